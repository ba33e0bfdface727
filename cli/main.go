// Package main provides a simple CLI client for chatting with the bot over WebSocket.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xiaot623/gogo/callbot/internal/transport/ws"
)

// Client represents a WebSocket chat client.
type Client struct {
	conn  *websocket.Conn
	done  chan struct{}
	ended chan struct{}
}

// NewClient creates a new client and connects to the server.
func NewClient(addr string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return &Client{
		conn:  conn,
		done:  make(chan struct{}),
		ended: make(chan struct{}),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	close(c.done)
	return c.conn.Close()
}

// SendHello binds the connection to a caller and waits for hello_ack.
func (c *Client) SendHello(callerID, mode string) (*ws.HelloAckMessage, error) {
	msg := ws.HelloMessage{
		BaseMessage: ws.BaseMessage{Type: ws.TypeHello, Ts: time.Now().UnixMilli()},
		CallerID:    callerID,
		InputMode:   mode,
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return nil, fmt.Errorf("write hello: %w", err)
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read hello_ack: %w", err)
	}

	var base ws.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("unmarshal hello_ack: %w", err)
	}
	if base.Type == ws.TypeError {
		var errMsg ws.ErrorMessage
		json.Unmarshal(data, &errMsg)
		return nil, fmt.Errorf("hello failed: %s - %s", errMsg.Code, errMsg.Message)
	}
	if base.Type != ws.TypeHelloAck {
		return nil, fmt.Errorf("expected hello_ack, got: %s", base.Type)
	}

	var ack ws.HelloAckMessage
	if err := json.Unmarshal(data, &ack); err != nil {
		return nil, fmt.Errorf("unmarshal hello_ack: %w", err)
	}
	return &ack, nil
}

// SendTurn sends one utterance. An empty text is silence.
func (c *Client) SendTurn(text string) error {
	return c.conn.WriteJSON(ws.TurnMessage{
		BaseMessage: ws.BaseMessage{Type: ws.TypeTurn, Ts: time.Now().UnixMilli()},
		Text:        text,
	})
}

// ReadMessages prints server messages until the conversation ends.
func (c *Client) ReadMessages() {
	defer close(c.ended)
	for {
		select {
		case <-c.done:
			return
		default:
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Printf("Read error: %v", err)
			}
			return
		}

		var base ws.BaseMessage
		if err := json.Unmarshal(data, &base); err != nil {
			log.Printf("Unmarshal error: %v", err)
			continue
		}

		switch base.Type {
		case ws.TypeReply:
			var msg ws.ReplyMessage
			json.Unmarshal(data, &msg)
			fmt.Printf("\nbot: %s\n> ", msg.Text)
		case ws.TypeTransfer:
			var msg ws.TransferMessage
			json.Unmarshal(data, &msg)
			if msg.Note != "" {
				fmt.Printf("\nbot: %s\n", msg.Note)
			}
			fmt.Printf("[transferring to %s]\n", msg.PhoneNumber)
		case ws.TypeEnd:
			fmt.Println("\n[call ended]")
		case ws.TypeError:
			var msg ws.ErrorMessage
			json.Unmarshal(data, &msg)
			fmt.Printf("\n[error] %s: %s\n> ", msg.Code, msg.Message)
		default:
			fmt.Printf("\n[%s] %s\n> ", base.Type, string(data))
		}
	}
}

func main() {
	addr := flag.String("addr", "ws://localhost:8080/v1/chat", "WebSocket server address")
	callerID := flag.String("caller", "+15550000000", "Caller phone number")
	mode := flag.String("mode", "text", "Input mode: text or voice")
	flag.Parse()

	log.SetFlags(log.Ltime)

	fmt.Printf("Connecting to %s...\n", *addr)

	client, err := NewClient(*addr)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	ack, err := client.SendHello(*callerID, *mode)
	if err != nil {
		log.Fatalf("Hello failed: %v", err)
	}

	fmt.Printf("Chatting as %s (%s)\n", ack.CallerID, ack.InputMode)
	fmt.Println("Type a message and press Enter to send.")
	fmt.Println("Commands: /silence to send an empty turn, /quit to exit")

	go client.ReadMessages()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	fmt.Print("> ")
	for {
		select {
		case <-interrupt:
			fmt.Println("\nInterrupted")
			return
		case <-client.ended:
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			input := strings.TrimSpace(line)
			switch input {
			case "":
				fmt.Print("> ")
				continue
			case "/quit":
				fmt.Println("Bye!")
				return
			case "/silence":
				input = ""
			}
			if err := client.SendTurn(input); err != nil {
				log.Printf("Send error: %v", err)
			}
		}
	}
}
