package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/handlers"

	apihandlers "github.com/St1cky1/task-portal/internal/api/handlers"
)

type Services struct {
	Auth          apihandlers.AuthUsecase
	Users         apihandlers.UserUsecase
	Tasks         apihandlers.TaskUsecase
	Subtasks      apihandlers.SubtaskUsecase
	Comments      apihandlers.CommentUsecase
	Notifications apihandlers.NotificationUsecase
	Bus           apihandlers.Subscriber
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)))
		})
	}
}

func NewRouter(svc Services, allowedOrigins []string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	authHandler := apihandlers.NewAuthHandler(svc.Auth, logger)
	userHandler := apihandlers.NewUserHandler(svc.Users, logger)
	taskHandler := apihandlers.NewTaskHandler(svc.Tasks, logger)
	subtaskHandler := apihandlers.NewSubtaskHandler(svc.Subtasks, logger)
	commentHandler := apihandlers.NewCommentHandler(svc.Comments, logger)
	notificationHandler := apihandlers.NewNotificationHandler(svc.Notifications, logger)
	eventsHandler := apihandlers.NewEventsHandler(svc.Bus, svc.Tasks, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/sign-in", authHandler.SignIn)
		r.Post("/auth/password-reset", authHandler.RequestPasswordReset)
		r.Post("/auth/password-reset/confirm", authHandler.ConfirmPasswordReset)

		r.Group(func(r chi.Router) {
			r.Use(apihandlers.RequireSession(svc.Auth, logger))

			r.Post("/auth/sign-out", authHandler.SignOut)
			r.Get("/auth/me", authHandler.Me)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.ListUsers)
				r.Post("/", userHandler.CreateUser)
				r.Get("/{id}", userHandler.GetUser)
				r.Patch("/{id}/status", userHandler.SetStatus)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.ListTasks)
				r.Post("/", taskHandler.CreateTask)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", taskHandler.GetTask)
					r.Put("/", taskHandler.UpdateTask)
					r.Delete("/", taskHandler.DeleteTask)

					r.Get("/subtasks", subtaskHandler.ListSubtasks)
					r.Post("/subtasks", subtaskHandler.CreateSubtask)
					r.Patch("/subtasks/{subtaskID}", subtaskHandler.ToggleSubtask)
					r.Delete("/subtasks/{subtaskID}", subtaskHandler.DeleteSubtask)

					r.Get("/comments", commentHandler.ListComments)
					r.Post("/comments", commentHandler.PostComment)
					r.Put("/comments/{commentID}", commentHandler.EditComment)
					r.Delete("/comments/{commentID}", commentHandler.DeleteComment)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.ListNotifications)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Post("/read-all", notificationHandler.MarkAllAsRead)
				r.Post("/{id}/read", notificationHandler.MarkAsRead)
			})

			r.Get("/events", eventsHandler.Stream)
		})
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.AllowCredentials(),
	)
	return cors(r)
}
