package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/field4d/gober/internal/config"
	"github.com/field4d/gober/internal/sink"
)

// buildSinks opens every sink enabled in conf. On error the sinks opened so
// far are closed.
func buildSinks(conf *config.Config, log *logrus.Entry) (sink.Multi, error) {
	var sinks sink.Multi
	fail := func(err error) (sink.Multi, error) {
		sinks.Close()
		return nil, err
	}
	if conf.ConsoleEnabled() {
		sinks = append(sinks, sink.NewConsole(os.Stdout))
	}
	if s := conf.Sinks.Serial; s != nil {
		port, err := sink.OpenSerial(s.Device, s.Baud)
		if err != nil {
			return fail(err)
		}
		log.Infof("forwarding records to serial %s at %d baud", s.Device, s.Baud)
		sinks = append(sinks, port)
	}
	if m := conf.Sinks.MQTT; m != nil {
		client, err := sink.DialMQTT(sink.MQTTOptions{
			Broker:   m.Broker,
			ClientID: m.ClientID,
			Topic:    m.Topic,
			QoS:      m.QoS,
		}, log)
		if err != nil {
			return fail(err)
		}
		log.Infof("publishing records to %s under %s", m.Broker, m.Topic)
		sinks = append(sinks, client)
	}
	if a := conf.Sinks.Archive; a != nil {
		archive, err := sink.OpenArchive(a.Path)
		if err != nil {
			return fail(err)
		}
		log.WithField("session", archive.Session()).Infof("archiving records to %s", a.Path)
		sinks = append(sinks, archive)
	}
	return sinks, nil
}
