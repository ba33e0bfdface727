package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/callbot/internal/domain"
	"github.com/xiaot623/gogo/callbot/tests/fixtures"
)

func dial(t *testing.T) (*websocket.Conn, *fixtures.Service) {
	t.Helper()
	svc := fixtures.NewService(t)
	e := echo.New()
	NewServer(svc.Service).RegisterRoutes(e)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn, svc
}

func readMap(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestChatRequiresHello(t *testing.T) {
	conn, _ := dial(t)

	require.NoError(t, conn.WriteJSON(TurnMessage{BaseMessage: BaseMessage{Type: TypeTurn}, Text: "hi"}))
	msg := readMap(t, conn)
	assert.Equal(t, TypeError, msg["type"])
	assert.Equal(t, ErrorCodeHelloRequired, msg["code"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{oops")))
	msg = readMap(t, conn)
	assert.Equal(t, ErrorCodeInvalidMessage, msg["code"])
}

func TestChatConversation(t *testing.T) {
	conn, svc := dial(t)
	svc.LLM.QueueText("We sell bait and tackle.")

	require.NoError(t, conn.WriteJSON(HelloMessage{BaseMessage: BaseMessage{Type: TypeHello}, CallerID: "+15551234567"}))
	ack := readMap(t, conn)
	assert.Equal(t, TypeHelloAck, ack["type"])
	assert.Equal(t, "text", ack["input_mode"])

	require.NoError(t, conn.WriteJSON(TurnMessage{BaseMessage: BaseMessage{Type: TypeTurn}, Text: "what do you sell?"}))
	reply := readMap(t, conn)
	assert.Equal(t, TypeReply, reply["type"])
	assert.Equal(t, "We sell bait and tackle.", reply["text"])

	// Silence is counted across turns on the same connection.
	require.NoError(t, conn.WriteJSON(TurnMessage{BaseMessage: BaseMessage{Type: TypeTurn}}))
	reply = readMap(t, conn)
	assert.Equal(t, TypeReply, reply["type"])
	require.NoError(t, conn.WriteJSON(TurnMessage{BaseMessage: BaseMessage{Type: TypeTurn}}))
	readMap(t, conn)
	require.NoError(t, conn.WriteJSON(TurnMessage{BaseMessage: BaseMessage{Type: TypeTurn}}))
	end := readMap(t, conn)
	assert.Equal(t, TypeEnd, end["type"])

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "expected normal close, got %v", err)
}

func TestChatTransferClosesConnection(t *testing.T) {
	conn, svc := dial(t)
	svc.LLM.
		QueueToolCall("", domain.ToolTransferCall, `{"phone_number":"+15559998888"}`).
		QueueText("Connecting you now.")

	require.NoError(t, conn.WriteJSON(HelloMessage{BaseMessage: BaseMessage{Type: TypeHello}, CallerID: "+15551234567", InputMode: "voice"}))
	readMap(t, conn)

	require.NoError(t, conn.WriteJSON(TurnMessage{BaseMessage: BaseMessage{Type: TypeTurn}, Text: "operator please"}))
	msg := readMap(t, conn)
	assert.Equal(t, TypeTransfer, msg["type"])
	assert.Equal(t, "+15559998888", msg["phone_number"])
	assert.Equal(t, "Connecting you now.", msg["note"])

	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
