package wire

import (
	"net/http"

	"seat-reservation/internal/adaptor"
	"seat-reservation/internal/usecase"
	"seat-reservation/pkg/middleware"
	"seat-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type App struct {
	Router *chi.Mux
}

// Wiring builds the HTTP surface on top of an already-constructed
// service layer. Services are built outside because they also feed the
// MQTT dispatcher and the recovery pass, which run before HTTP comes up.
func Wiring(service *usecase.Service, config *utils.Config, logger *zap.Logger) *App {
	handler := adaptor.NewHandler(service, logger)

	router := chi.NewRouter()
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recover(logger))

	wireSeat(router, handler.Seat)
	wireBooking(router, handler.Booking)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return &App{Router: router}
}
