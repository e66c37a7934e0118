package discord

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jfmyers9/mediakeys/internal/wire"
)

// ActivityListening is the Discord activity type shown as "Listening to".
const ActivityListening = 2

// Activity is the Rich Presence payload sent with SET_ACTIVITY.
type Activity struct {
	Type       int         `json:"type,omitempty"`
	Name       string      `json:"name,omitempty"`
	Details    string      `json:"details,omitempty"`
	State      string      `json:"state,omitempty"`
	Timestamps *Timestamps `json:"timestamps,omitempty"`
	Assets     *Assets     `json:"assets,omitempty"`
	Instance   bool        `json:"instance"`
}

type Timestamps struct {
	Start *int64 `json:"start,omitempty"`
	End   *int64 `json:"end,omitempty"`
}

type Assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

type ipcClient struct {
	conn net.Conn
}

func ipcConnect(appID string) (*ipcClient, error) {
	conn, err := dialSocket(socketDirs())
	if err != nil {
		return nil, fmt.Errorf("dial discord socket: %w", err)
	}
	return handshake(conn, appID)
}

func handshake(conn net.Conn, appID string) (*ipcClient, error) {
	c := &ipcClient{conn: conn}

	payload, _ := json.Marshal(map[string]any{
		"v":         1,
		"client_id": appID,
	})
	if err := wire.WriteFrame(conn, wire.OpHandshake, payload); err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake write: %w", err)
	}

	if _, _, err := wire.ReadFrame(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake read: %w", err)
	}
	return c, nil
}

// socketDirs lists the directories Discord may place its IPC sockets in
func socketDirs() []string {
	var dirs []string
	for _, env := range []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"} {
		if dir := os.Getenv(env); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return append(dirs, os.TempDir())
}

func dialSocket(dirs []string) (net.Conn, error) {
	lastErr := fmt.Errorf("no socket directories")
	for _, dir := range dirs {
		for i := 0; i <= 9; i++ {
			path := filepath.Join(dir, fmt.Sprintf("discord-ipc-%d", i))
			conn, err := net.DialTimeout("unix", path, 5*time.Second)
			if err == nil {
				return conn, nil
			}
			lastErr = err
		}
	}
	return nil, fmt.Errorf("no discord socket found: %w", lastErr)
}

func (c *ipcClient) SetActivity(a Activity) error {
	payload, _ := json.Marshal(map[string]any{
		"cmd": "SET_ACTIVITY",
		"args": map[string]any{
			"pid":      os.Getpid(),
			"activity": a,
		},
		"nonce": uuid.NewString(),
	})
	if err := wire.WriteFrame(c.conn, wire.OpFrame, payload); err != nil {
		return err
	}

	_, data, err := wire.ReadFrame(c.conn)
	if err != nil {
		return err
	}

	var resp struct {
		Evt  string `json:"evt"`
		Data struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Evt == "ERROR" {
		return fmt.Errorf("discord error %d: %s", resp.Data.Code, resp.Data.Message)
	}
	return nil
}

func (c *ipcClient) Close() error {
	_ = wire.WriteFrame(c.conn, wire.OpClose, []byte("{}"))
	return c.conn.Close()
}
