package app

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/notehive/collab-note-service/global"
	"github.com/notehive/collab-note-service/pkg/code"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/lxzan/gws"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type LogType string

const (
	WebSocketServerPingInterval         = 25
	WebSocketServerPingWait             = 40
	LogInfo                     LogType = "info"
	LogError                    LogType = "error"
	LogWarn                     LogType = "warn"
)

func log(t LogType, msg string, fields ...zap.Field) {
	switch t {
	case LogError:
		global.Logger.Error(msg, fields...)
	case LogWarn:
		global.Logger.Warn(msg, fields...)
	default:
		global.Logger.Info(msg, fields...)
	}
}

// WebSocketMessage 客户端消息，格式为 "Action|payload"
type WebSocketMessage struct {
	Type string `json:"type"` // 操作类型，例如 "NoteWatch"
	Data []byte `json:"data"` // 消息负载
}

type WSConfig struct {
	GWSOption    gws.ServerOption
	PingInterval time.Duration
	PingWait     time.Duration
}

// WebsocketClient 存储每个 WebSocket 连接及其相关状态
type WebsocketClient struct {
	conn     *gws.Conn
	done     chan struct{}
	doneOnce sync.Once
	Ctx      *gin.Context
	TraceID  string
	User     *UserEntity
	SF       *singleflight.Group // 用于合并并发请求

	// watching 该连接订阅的笔记 ID 集合，由 server 的互斥锁保护
	watching map[int64]struct{}
}

// BindAndValid 解析 WebSocket 消息负载
func (c *WebsocketClient) BindAndValid(data []byte, obj any) (bool, ValidErrors) {
	if err := sonic.Unmarshal(data, obj); err != nil {
		return false, ValidErrors{{Key: "body", Message: "Invalid message format"}}
	}
	return true, nil
}

// PingLoop 定期发送 Ping 消息
func (c *WebsocketClient) PingLoop(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if c.conn == nil {
				return
			}
			if err := c.conn.WritePing(nil); err != nil {
				log(LogError, "WebsocketServer Client Ping err", zap.Error(err))
				return
			}
		}
	}
}

type wsResult struct {
	Code    int         `json:"code"`
	Status  bool        `json:"status"`
	Msg     string      `json:"msg"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// ToResponse 将结果转换为 JSON 格式并发送给客户端
func (c *WebsocketClient) ToResponse(codeObj *code.Code, action ...string) {
	var actionType string
	if len(action) > 0 {
		actionType = action[0]
	}

	res := wsResult{
		Code:   codeObj.Code(),
		Status: codeObj.Status(),
		Msg:    codeObj.Lang.GetMessage(),
		Data:   codeObj.Data(),
	}
	if codeObj.HaveDetails() && !IsProductionMode() {
		res.Details = strings.Join(codeObj.Details(), ",")
	}
	c.send(actionType, res)
}

func (c *WebsocketClient) send(actionType string, content any) {
	payload, _ := sonic.Marshal(content)
	if actionType != "" {
		payload = []byte(fmt.Sprintf("%s|%s", actionType, payload))
	}
	if c.conn != nil {
		_ = c.conn.WriteMessage(gws.OpcodeText, payload)
	}
}

func (c *WebsocketClient) close() {
	c.doneOnce.Do(func() { close(c.done) })
}

// ------------------------------------> WebsocketServer

type ConnStorage = map[*gws.Conn]*WebsocketClient

// WebsocketServer 维护连接、按用户分组的连接和按笔记分组的订阅
// 作为笔记变更通知的下发通道
type WebsocketServer struct {
	handlers     map[string]func(*WebsocketClient, *WebSocketMessage)
	userVerify   func(*WebsocketClient, int64) error
	tokens       TokenManager
	clients      ConnStorage
	userClients  map[int64]ConnStorage
	noteWatchers map[int64]ConnStorage
	mu           sync.Mutex
	up           *gws.Upgrader
	config       *WSConfig
}

func NewWebsocketServer(c WSConfig, tokens TokenManager) *WebsocketServer {
	if c.PingInterval == 0 {
		c.PingInterval = WebSocketServerPingInterval
	}
	if c.PingWait == 0 {
		c.PingWait = WebSocketServerPingWait
	}
	wss := &WebsocketServer{
		handlers:     make(map[string]func(*WebsocketClient, *WebSocketMessage)),
		clients:      make(ConnStorage),
		userClients:  make(map[int64]ConnStorage),
		noteWatchers: make(map[int64]ConnStorage),
		tokens:       tokens,
		config:       &c,
	}
	wss.up = gws.NewUpgrader(wss, &c.GWSOption)
	return wss
}

// Run 返回处理 WebSocket 升级的 gin handler
func (w *WebsocketServer) Run() gin.HandlerFunc {
	return func(c *gin.Context) {
		socket, err := w.up.Upgrade(c.Writer, c.Request)
		if err != nil {
			log(LogError, "WebsocketServer Upgrade err", zap.Error(err))
			return
		}
		client := &WebsocketClient{
			conn:     socket,
			done:     make(chan struct{}),
			Ctx:      c,
			TraceID:  c.GetString("trace_id"),
			SF:       new(singleflight.Group),
			watching: make(map[int64]struct{}),
		}
		w.addClient(client)
		go socket.ReadLoop()
	}
}

// Use 注册消息处理器
func (w *WebsocketServer) Use(action string, handler func(*WebsocketClient, *WebSocketMessage)) {
	w.handlers[action] = handler
}

// UseUserVerify 注册用户有效性校验函数
// Authorization 时强制验证 Token 对应的用户仍然存在
func (w *WebsocketServer) UseUserVerify(handler func(*WebsocketClient, int64) error) {
	w.userVerify = handler
}

func (w *WebsocketServer) authorization(c *WebsocketClient, msg *WebSocketMessage) {
	user, err := w.tokens.Parse(string(msg.Data))
	if err != nil {
		log(LogError, "WebsocketServer Authorization failed", zap.Error(err))
		c.ToResponse(code.ErrorInvalidUserAuthToken, "Authorization")
		c.conn.WriteClose(1000, []byte("AuthorizationFailed"))
		return
	}

	if w.userVerify != nil {
		if err := w.userVerify(c, user.UID); err != nil {
			log(LogError, "WebsocketServer Authorization user not exist", zap.Error(err))
			c.ToResponse(code.ErrorInvalidUserAuthToken, "Authorization")
			c.conn.WriteClose(1000, []byte("AuthorizationFailed"))
			return
		}
	}

	c.User = user
	w.addUserClient(c)
	c.ToResponse(code.Success, "Authorization")
	log(LogInfo, "WebsocketServer User Enters", zap.Int64("uid", user.UID), zap.String("nickname", user.Nickname))
	go c.PingLoop(w.config.PingInterval)
}

func (w *WebsocketServer) GetClient(conn *gws.Conn) *WebsocketClient {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clients[conn]
}

func (w *WebsocketServer) addClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[c.conn] = c
}

func (w *WebsocketServer) addUserClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.userClients[c.User.UID] == nil {
		w.userClients[c.User.UID] = make(ConnStorage)
	}
	w.userClients[c.User.UID][c.conn] = c
}

func (w *WebsocketServer) removeClient(conn *gws.Conn) *WebsocketClient {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.clients[conn]
	delete(w.clients, conn)
	if c == nil {
		return nil
	}

	if c.User != nil {
		delete(w.userClients[c.User.UID], conn)
		if len(w.userClients[c.User.UID]) == 0 {
			delete(w.userClients, c.User.UID)
		}
	}
	for noteID := range c.watching {
		delete(w.noteWatchers[noteID], conn)
		if len(w.noteWatchers[noteID]) == 0 {
			delete(w.noteWatchers, noteID)
		}
	}
	return c
}

// Watch 为客户端订阅若干笔记的变更通知
func (w *WebsocketServer) Watch(c *WebsocketClient, noteIDs []int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, id := range noteIDs {
		if w.noteWatchers[id] == nil {
			w.noteWatchers[id] = make(ConnStorage)
		}
		w.noteWatchers[id][c.conn] = c
		c.watching[id] = struct{}{}
	}
}

// Unwatch 取消订阅
func (w *WebsocketServer) Unwatch(c *WebsocketClient, noteIDs []int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, id := range noteIDs {
		delete(w.noteWatchers[id], c.conn)
		if len(w.noteWatchers[id]) == 0 {
			delete(w.noteWatchers, id)
		}
		delete(c.watching, id)
	}
}

// WatcherCount 返回某条笔记的订阅连接数
func (w *WebsocketServer) WatcherCount(noteID int64) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.noteWatchers[noteID])
}

// NotifyNote pushes payload to all watchers of a note except excludeUID
// NotifyNote 将负载推送给笔记的所有订阅者，excludeUID 的连接除外
// 尽力投递，返回成功投递的连接数
func (w *WebsocketServer) NotifyNote(noteID int64, payload any, excludeUID int64) int {
	data, err := sonic.Marshal(payload)
	if err != nil {
		log(LogError, "WebsocketServer NotifyNote marshal err", zap.Error(err))
		return 0
	}
	frame := []byte(fmt.Sprintf("Notification|%s", data))

	w.mu.Lock()
	receivers := make([]*WebsocketClient, 0, len(w.noteWatchers[noteID]))
	for _, uc := range w.noteWatchers[noteID] {
		if uc.User == nil || uc.User.UID == excludeUID {
			continue
		}
		receivers = append(receivers, uc)
	}
	w.mu.Unlock()

	if len(receivers) == 0 {
		return 0
	}

	b := gws.NewBroadcaster(gws.OpcodeText, frame)
	defer b.Close()

	sent := 0
	for _, uc := range receivers {
		if uc.conn == nil {
			continue
		}
		if err := b.Broadcast(uc.conn); err == nil {
			sent++
		}
	}
	return sent
}

// NotifyUser 将负载推送给某个用户的全部在线连接
// 尽力投递，返回成功投递的连接数
func (w *WebsocketServer) NotifyUser(uid int64, payload any) int {
	data, err := sonic.Marshal(payload)
	if err != nil {
		log(LogError, "WebsocketServer NotifyUser marshal err", zap.Error(err))
		return 0
	}
	frame := []byte(fmt.Sprintf("Notification|%s", data))

	w.mu.Lock()
	receivers := make([]*WebsocketClient, 0, len(w.userClients[uid]))
	for _, uc := range w.userClients[uid] {
		receivers = append(receivers, uc)
	}
	w.mu.Unlock()

	sent := 0
	for _, uc := range receivers {
		if uc.conn == nil {
			continue
		}
		if err := uc.conn.WriteMessage(gws.OpcodeText, frame); err == nil {
			sent++
		}
	}
	return sent
}

// OnOpen implements gws.Event
func (w *WebsocketServer) OnOpen(conn *gws.Conn) {
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
}

// OnClose implements gws.Event
func (w *WebsocketServer) OnClose(conn *gws.Conn, err error) {
	c := w.removeClient(conn)
	if c == nil {
		return
	}
	c.close()
	if c.User != nil {
		log(LogInfo, "WebsocketServer User Leave", zap.Int64("uid", c.User.UID))
	}
}

// OnPing implements gws.Event
func (w *WebsocketServer) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
	_ = socket.WritePong(nil)
}

// OnPong implements gws.Event
func (w *WebsocketServer) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
}

// OnMessage implements gws.Event
func (w *WebsocketServer) OnMessage(conn *gws.Conn, message *gws.Message) {
	defer message.Close()
	if message.Opcode != gws.OpcodeText {
		return
	}
	if message.Data.String() == "close" {
		conn.WriteClose(1000, []byte("ClientClose"))
		return
	}

	c := w.GetClient(conn)
	if c == nil {
		return
	}

	messageStr := message.Data.String()
	index := strings.Index(messageStr, "|")
	if index == -1 {
		log(LogError, "WebsocketServer OnMessage illegal message")
		return
	}

	msg := WebSocketMessage{
		Type: messageStr[:index],
		Data: []byte(messageStr[index+1:]),
	}

	if msg.Type == "Authorization" {
		w.authorization(c, &msg)
		return
	}

	// 其余操作要求已登录
	if c.User == nil {
		c.ToResponse(code.ErrorNotUserAuthToken)
		return
	}

	handler, exists := w.handlers[msg.Type]
	if !exists {
		log(LogWarn, "WebsocketServer OnMessage unknown type", zap.String("type", msg.Type))
		return
	}
	handler(c, &msg)
}
