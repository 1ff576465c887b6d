package main

import (
	"github.com/omarelshorbagy/Project-Software-Engineering/internal/group"
	"github.com/omarelshorbagy/Project-Software-Engineering/internal/identity"
	"github.com/omarelshorbagy/Project-Software-Engineering/internal/room"
	"github.com/omarelshorbagy/Project-Software-Engineering/internal/upload"
	globalprotocol "github.com/omarelshorbagy/Project-Software-Engineering/pkg/protocol"
	"github.com/omarelshorbagy/Project-Software-Engineering/pkg/service"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fx.Provide(
			room.NewStore,
			room.NewConnectionRegistry,
			room.NewRelay,
			fx.Annotate(room.NewPresenceNotifier, fx.As(new(room.PresenceTracker))),
			room.NewSessionGateway,

			identity.NewTokenService,
			identity.NewIdentityService,

			globalprotocol.AsHttpController(room.NewRoomController),
			globalprotocol.AsHttpController(identity.NewIdentityController),
			globalprotocol.AsHttpController(group.NewGroupController),
			globalprotocol.AsHttpController(upload.NewUploadController),
		),

		service.LoggerModule,
		service.DatabaseModule,
		service.HttpModule,
	).Run()
}
