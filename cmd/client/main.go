package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/askova/chatrelay/client"
	"github.com/askova/chatrelay/proto"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "relay server address")
	useWS := flag.Bool("ws", false, "connect through the WebSocket gateway")
	flag.Parse()

	var transport client.Transport
	if *useWS {
		transport = client.NewWebSocketTransport()
	} else {
		transport = client.NewTCPTransport()
	}

	c, err := client.Connect(*addr, transport)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect failed:", err)
		os.Exit(1)
	}
	defer c.Close()

	fmt.Printf("connected to %s as %s\n", *addr, c.ID())

	go printIncoming(c)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if err := c.Send(text); err != nil {
			fmt.Fprintln(os.Stderr, "send failed:", err)
			return
		}
	}
}

func printIncoming(c *client.Client) {
	for {
		msg, err := c.Receive()
		if err != nil {
			fmt.Fprintln(os.Stderr, "connection closed")
			os.Exit(0)
		}
		switch msg.Type {
		case proto.KindChat:
			stamp := time.Unix(msg.Timestamp, 0).Format("15:04:05")
			fmt.Printf("%s [%s] %s\n", stamp, shortID(msg.ClientID.String()), msg.Content)
		case proto.KindSystem:
			fmt.Printf("* %s\n", msg.Content)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
