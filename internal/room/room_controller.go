package room

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	echo "github.com/labstack/echo/v4"
	globalprotocol "github.com/omarelshorbagy/Project-Software-Engineering/pkg/protocol"
	"github.com/omarelshorbagy/Project-Software-Engineering/pkg/variables"
	"github.com/omarelshorbagy/Project-Software-Engineering/pkg/wsutils"
	"go.uber.org/fx"
)

type roomController struct {
	gateway           *SessionGateway
	upgrader          websocket.Upgrader
	logger            *slog.Logger
	heartbeatInterval time.Duration
}

// RoomControllerChannel upgrades the request and runs the session event
// loop until the channel closes. A connection that stops answering pings
// fails its read deadline and is evicted through the normal disconnect
// path, there is no separate reaper.
func (ctrl *roomController) RoomControllerChannel(ctx echo.Context) error {
	conn, err := ctrl.upgrader.Upgrade(ctx.Response().Writer, ctx.Request(), nil)
	if err != nil {
		ctrl.logger.Error(fmt.Sprintf("Unable upgrade request %+v", ctx.Request()))
		return err
	}

	w := wsutils.NewThreadSafeWriter(conn)
	defer w.Close()

	sess := NewSession(w)
	ctrl.gateway.Register(sess)
	defer ctrl.gateway.Disconnect(sess)

	readDeadline := ctrl.heartbeatInterval * 2
	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	go func() {
		ticker := time.NewTicker(ctrl.heartbeatInterval)
		defer ticker.Stop()
		for range ticker.C {
			if sess.State() == StateClosed {
				return
			}
			if err := w.Ping(time.Now().Add(time.Second * 5)); err != nil {
				return
			}
		}
	}()

	message := &websocketMessage{}
	for {
		if err := w.ReadJSON(message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ctrl.logger.Warn("channel read", slog.String("conn", sess.ID), slog.String("err", err.Error()))
			}
			return nil
		}
		ctrl.gateway.Dispatch(sess, message)
	}
}

func (ctrl *roomController) RoomControllerActiveUsers(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, ctrl.gateway.ActiveUsers())
}

func (ctrl *roomController) Resolve(c *echo.Echo) error {
	c.GET("/ws", ctrl.RoomControllerChannel)
	c.GET("/api/active-users", ctrl.RoomControllerActiveUsers)
	return nil
}

var _ globalprotocol.HttpResolvable = (*roomController)(nil)

type newRoomController_Params struct {
	fx.In

	Gateway *SessionGateway
	Logger  *slog.Logger
}

func NewRoomController(params newRoomController_Params) *roomController {
	interval, err := time.ParseDuration(variables.Env(variables.HEARTBEAT_INTERVAL_NAME, variables.HEARTBEAT_INTERVAL_DEFAULT))
	if err != nil {
		interval = time.Second * 30
	}

	return &roomController{
		gateway: params.Gateway,
		logger:  params.Logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		heartbeatInterval: interval,
	}
}
