// Package analytics mirrors change events to a Kafka topic for
// offline consumers. The mirror is just another bus subscriber:
// mutations never wait on it, and a broker outage costs nothing but
// dropped analytics records.
package analytics

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Roberto031094/Backend1-Entrega/internal/adapter/eventbus"
	"github.com/Roberto031094/Backend1-Entrega/internal/core/domain"
	"github.com/Roberto031094/Backend1-Entrega/pkg/broadcast"
	"github.com/Roberto031094/Backend1-Entrega/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var ErrTooFewOpts = errors.New("too few options")

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Opt func(*mirrorOpts) error

type mirrorOpts struct {
	cl      ProducerClient
	encoder Encoder
}

// ProducerClientOpt dials the brokers and verifies connectivity.
// A nil tlsConfig keeps the connection plaintext.
func ProducerClientOpt(
	ctx context.Context, seedBrokers []string, topic string,
	tlsConfig *tls.Config,
) Opt {
	return func(opts *mirrorOpts) error {
		clOpts := []kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.AllowAutoTopicCreation(),
		}
		if tlsConfig != nil {
			clOpts = append(clOpts, kgo.DialTLSConfig(tlsConfig))
		}

		cl, err := kgo.NewClient(clOpts...)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			return err
		}
		opts.cl = cl
		return nil
	}
}

// ClientOpt injects an already constructed producer client.
func ClientOpt(cl ProducerClient) Opt {
	return func(opts *mirrorOpts) error {
		if cl == nil {
			return errors.New("producer client is nil")
		}
		opts.cl = cl
		return nil
	}
}

func EncoderOpt(encoder Encoder) Opt {
	return func(opts *mirrorOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

// Mirror forwards every bus event to the configured topic.
type Mirror struct {
	cl      ProducerClient
	encoder Encoder
	sub     *broadcast.Subscription[domain.ChangeEvent]
	done    chan struct{}
}

func NewMirror(bus *eventbus.Bus, opts ...Opt) (*Mirror, error) {
	const op = "NewMirror"

	if len(opts) != 2 {
		return nil, opErr(ErrTooFewOpts, op)
	}

	var options mirrorOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, opErr(err, op)
		}
	}

	return &Mirror{
		cl:      options.cl,
		encoder: options.encoder,
		sub:     bus.Subscribe(256, eventbus.TopicAll),
		done:    make(chan struct{}),
	}, nil
}

// Run consumes the subscription until ctx ends or the mirror is
// closed. Producing errors are logged and dropped, never retried:
// analytics records are as ephemeral as the events they mirror.
func (m *Mirror) Run(ctx context.Context) {
	const op = "Mirror.Run"
	log := slog.With("op", op)

	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-m.sub.C():
			if !ok {
				return
			}
			r, err := m.makeRecord(evt)
			if err != nil {
				log.Warn("failed to encode event", "err", err)
				continue
			}
			res := m.cl.ProduceSync(ctx, r)
			if err := res.FirstErr(); err != nil {
				log.Warn("failed to produce event",
					"kind", evt.Kind, "err", err)
			}
		}
	}
}

func (m *Mirror) Close() {
	const op = "Mirror.Close"
	log := slog.With("op", op)

	log.Info("closing analytics mirror...")
	m.sub.Close()
	<-m.done
	m.cl.Close()
	log.Info("analytics mirror is closed")
}

func (m *Mirror) makeRecord(evt domain.ChangeEvent) (*kgo.Record, error) {
	const op = "makeRecord"

	b, err := m.encoder.Encode(toSchemaV1(evt))
	if err != nil {
		return nil, opErr(err, op)
	}
	return &kgo.Record{Key: []byte(evt.Topic()), Value: b}, nil
}

func toSchemaV1(evt domain.ChangeEvent) (s schema.ChangeEventV1) {
	s.Kind = string(evt.Kind)
	s.ProductID = evt.ProductID

	if p := evt.Product; p != nil {
		s.Product = &schema.ProductV1{
			ID:          p.ProductID,
			Title:       p.Title,
			Description: p.Description,
			Code:        p.Code,
			Price:       p.Price,
			Stock:       p.Stock,
			Category:    p.Category,
			Thumbnails:  p.Thumbnails,
		}
	}

	if c := evt.Cart; c != nil {
		cv := &schema.CartV1{ID: c.CartID, Items: []schema.CartItemV1{}}
		for _, it := range c.Items {
			cv.Items = append(cv.Items, schema.CartItemV1{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
			})
		}
		s.Cart = cv
	}
	return s
}

func opErr(err error, op string) error {
	return fmt.Errorf("%s: %w", op, err)
}
