package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"

	ws_room "github.com/DMQQ/movie-picker-server/internal/delivery/ws/room"
	"github.com/DMQQ/movie-picker-server/internal/model"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const usage = `commands:
  create <mediaType> <pageRange> [genre,genre...] [name]
  join <roomId> [name]
  movies | overview | details | status
  pick <itemId>
  finish
  leave
  delete
  quit`

type Client struct {
	conn *websocket.Conn
	done chan struct{}

	mu   sync.Mutex
	room string
}

func Dial(addr, user string) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/api/v1/ws"}

	header := http.Header{}
	if user != "" {
		header.Set("user-id", user)
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("websocket connection failed: %w", err)
	}

	c := &Client{conn: conn, done: make(chan struct{})}
	go c.listen()
	return c, nil
}

func (c *Client) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *Client) setRoom(room string) {
	c.mu.Lock()
	c.room = room
	c.mu.Unlock()
}

func (c *Client) Send(eventType string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.conn.WriteJSON(ws_room.Inbound{
		Type:      eventType,
		RequestID: uuid.NewString(),
		Data:      raw,
	})
}

func (c *Client) listen() {
	defer close(c.done)
	for {
		var msg struct {
			Type      string          `json:"type"`
			RequestID string          `json:"requestId"`
			Data      json.RawMessage `json:"data"`
			Error     string          `json:"error"`
		}
		if err := c.conn.ReadJSON(&msg); err != nil {
			fmt.Printf("connection closed: %v\n", err)
			return
		}
		c.print(msg.Type, msg.Data, msg.Error)
	}
}

func (c *Client) print(eventType string, data json.RawMessage, errMsg string) {
	if errMsg != "" {
		fmt.Printf("<- %s failed: %s\n", eventType, errMsg)
		return
	}

	switch eventType {
	case ws_room.EventAck:
		var ack ws_room.CreateRoomAck
		if json.Unmarshal(data, &ack) == nil && ack.RoomID != "" {
			c.setRoom(string(ack.RoomID))
			fmt.Printf("<- room created: %s\n", ack.RoomID)
			return
		}
	case ws_room.EventMovies:
		var msg struct {
			Movies []model.Item `json:"movies"`
		}
		if json.Unmarshal(data, &msg) == nil {
			fmt.Printf("<- %d movies\n", len(msg.Movies))
			for _, item := range msg.Movies {
				fmt.Printf("   %d. %s\n", item.ID, item.Title)
			}
			return
		}
	case ws_room.EventRoomDeleted:
		c.setRoom("")
	}

	fmt.Printf("<- %s %s\n", eventType, string(data))
}

func (c *Client) Close() {
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = c.conn.Close()
	<-c.done
}

func (c *Client) exec(fields []string) error {
	room := c.Room()

	switch fields[0] {
	case "create":
		if len(fields) < 3 {
			return fmt.Errorf("usage: create <mediaType> <pageRange> [genres] [name]")
		}
		pageRange, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("pageRange: %w", err)
		}
		payload := ws_room.CreateRoomPayload{MediaType: fields[1], PageRange: pageRange}
		if len(fields) > 3 {
			for _, g := range strings.Split(fields[3], ",") {
				id, err := strconv.Atoi(g)
				if err != nil {
					return fmt.Errorf("genre %q: %w", g, err)
				}
				payload.Genres = append(payload.Genres, id)
			}
		}
		if len(fields) > 4 {
			payload.DisplayName = fields[4]
		}
		return c.Send(ws_room.EventCreateRoom, payload)
	case "join":
		if len(fields) < 2 {
			return fmt.Errorf("usage: join <roomId> [name]")
		}
		payload := ws_room.JoinRoomPayload{RoomID: fields[1]}
		if len(fields) > 2 {
			payload.DisplayName = fields[2]
		}
		c.setRoom(fields[1])
		return c.Send(ws_room.EventJoinRoom, payload)
	case "pick":
		if len(fields) < 2 {
			return fmt.Errorf("usage: pick <itemId>")
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return fmt.Errorf("itemId: %w", err)
		}
		return c.Send(ws_room.EventPickMovie, ws_room.PickPayload{RoomID: room, ItemID: model.ItemID(id)})
	}

	events := map[string]string{
		"movies":   ws_room.EventGetMovies,
		"overview": ws_room.EventGetOverview,
		"details":  ws_room.EventGetRoomDetails,
		"status":   ws_room.EventGetBuddyStatus,
		"finish":   ws_room.EventFinish,
		"leave":    ws_room.EventLeaveRoom,
		"delete":   ws_room.EventDeleteRoom,
	}
	eventType, ok := events[fields[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", fields[0])
	}
	if room == "" {
		return fmt.Errorf("not in a room")
	}
	if eventType == ws_room.EventLeaveRoom {
		defer c.setRoom("")
	}
	return c.Send(eventType, ws_room.RoomPayload{RoomID: room})
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server host:port")
	user := flag.String("user", "", "user id sent in the user-id header")
	flag.Parse()

	client, err := Dial(*addr, *user)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer client.Close()

	fmt.Println(usage)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" {
			return
		}
		if err := client.exec(fields); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}
