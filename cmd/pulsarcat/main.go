// Command pulsarcat is a small command-line client for broker-client-go:
// subscribe and print messages, produce a message from stdin/args, or
// print running consumer stats.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/relaybroker/broker-client-go/core/manage"
	"github.com/relaybroker/broker-client-go/core/msg"
	"github.com/relaybroker/broker-client-go/pkg/config"
	"github.com/relaybroker/broker-client-go/pkg/log"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "pulsarcat",
		Short: "Subscribe to, produce to, and inspect a broker topic",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "pulsarcat.toml", "path to TOML config file")

	root.AddCommand(subscribeCmd(), produceCmd(), statsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (manage.ClientConfig, manage.ConsumerConfig, error) {
	f, err := config.Load(configPath)
	if err != nil {
		return manage.ClientConfig{}, manage.ConsumerConfig{}, err
	}
	cc, err := f.ClientConfig()
	if err != nil {
		return manage.ClientConfig{}, manage.ConsumerConfig{}, err
	}
	consCfg, err := f.ConsumerConfig(cc)
	if err != nil {
		return manage.ClientConfig{}, manage.ConsumerConfig{}, err
	}
	return cc, consCfg, nil
}

func subscribeCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Subscribe to consumer.topic and print messages as they arrive",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, consCfg, err := loadConfig()
			if err != nil {
				return err
			}

			pool := manage.NewClientPool()
			defer pool.Close()

			mc := manage.NewManagedConsumer(pool, consCfg)
			defer mc.Close(context.Background())

			ctx := context.Background()
			for i := 0; count <= 0 || i < count; i++ {
				m, err := mc.Receive(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("%s %s\n", m.ID, m.Payload)
				if err := mc.Ack(ctx, m); err != nil {
					log.Warnf("pulsarcat: ack failed: %v", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "stop after this many messages (0 = run forever)")
	return cmd
}

func produceCmd() *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "produce",
		Short: "Send a single message to consumer.topic, from --message or stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, consCfg, err := loadConfig()
			if err != nil {
				return err
			}

			payload := []byte(message)
			if message == "" {
				scanner := bufio.NewScanner(os.Stdin)
				if scanner.Scan() {
					payload = scanner.Bytes()
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			pool := manage.NewClientPool()
			defer pool.Close()

			handle, err := pool.ForTopic(ctx, cc, consCfg.Topic)
			if err != nil {
				return err
			}
			client, err := handle.Get(ctx)
			if err != nil {
				return err
			}

			producer := client.NewProducer("pulsarcat")
			receipt, err := producer.Send(ctx, payload)
			if err != nil {
				return err
			}
			fmt.Printf("sent sequence %d\n", receipt.GetSequenceId())
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "message payload (default: read one line from stdin)")
	return cmd
}

func statsCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Subscribe and periodically print consumer stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, consCfg, err := loadConfig()
			if err != nil {
				return err
			}

			pool := manage.NewClientPool()
			defer pool.Close()

			mc := manage.NewManagedConsumer(pool, consCfg)
			defer mc.Close(context.Background())

			msgs := make(chan msg.Message, consCfg.QueueSize)
			go func() {
				if err := mc.ReceiveAsync(context.Background(), msgs); err != nil {
					log.Warnf("pulsarcat: receive loop exited: %v", err)
				}
			}()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case m := <-msgs:
					if err := mc.Ack(context.Background(), m); err != nil {
						log.Warnf("pulsarcat: ack failed: %v", err)
					}
				case <-ticker.C:
					c := mc.Consumer(context.Background())
					if c == nil {
						continue
					}
					s := c.GetStats()
					fmt.Printf("received=%d bytes=%d acks=%d nacks=%d dlq=%d prefetched=%d\n",
						s.MessagesReceived, s.BytesReceived, s.Acks, s.Nacks, s.DeadLettered, s.PrefetchedMessages)
				}
			}
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "stats print interval")
	return cmd
}
