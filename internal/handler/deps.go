package handler

import (
	"seatnotify/internal/app/hub"
	"seatnotify/internal/configs"
)

type AppDeps struct {
	Hub    *hub.Hub
	Config *configs.AppConfig
}
