package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/skillshare/api/internal/application/auth"
	"github.com/skillshare/api/internal/application/category"
	fileapp "github.com/skillshare/api/internal/application/file"
	"github.com/skillshare/api/internal/application/message"
	"github.com/skillshare/api/internal/application/order"
	"github.com/skillshare/api/internal/application/payment"
	"github.com/skillshare/api/internal/application/project"
	"github.com/skillshare/api/internal/application/review"
	"github.com/skillshare/api/internal/application/user"
	"github.com/skillshare/api/internal/config"
	"github.com/skillshare/api/internal/domain"
	"github.com/skillshare/api/internal/transport/http/handler"
	appmiddleware "github.com/skillshare/api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	userSvc := user.NewService(deps.UserRepo)
	categorySvc := category.NewService(deps.CategoryRepo)
	projectSvc := project.NewService(project.ServiceDeps{
		ProjectRepo:  deps.ProjectRepo,
		UserRepo:     deps.UserRepo,
		CategoryRepo: deps.CategoryRepo,
	})
	orderSvc := order.NewService(order.ServiceDeps{
		OrderRepo:   deps.OrderRepo,
		ProjectRepo: deps.ProjectRepo,
		Events:      deps.Events,
	})
	paymentSvc := payment.NewService(payment.ServiceDeps{
		PaymentRepo: deps.PaymentRepo,
		WalletRepo:  deps.WalletRepo,
		OrderRepo:   deps.OrderRepo,
		Events:      deps.Events,
	})
	messageSvc := message.NewService(message.ServiceDeps{
		MessageRepo: deps.MessageRepo,
		UserRepo:    deps.UserRepo,
		OrderRepo:   deps.OrderRepo,
	})
	reviewSvc := review.NewService(review.ServiceDeps{
		ReviewRepo: deps.ReviewRepo,
		OrderRepo:  deps.OrderRepo,
	})
	fileSvc := fileapp.NewService(deps.S3Store, deps.FileRepo, deps.ProjectRepo)
	authDeps := auth.ServiceDeps{
		UserRepo: deps.UserRepo,
		Ledger:   deps.Ledger,
	}
	// A plain nil check is not enough once the pointer is boxed in the
	// interface field, so only assign when a provider actually exists.
	if deps.JWTProvider != nil {
		authDeps.Tokens = deps.JWTProvider
	}
	authSvc := auth.NewService(authDeps)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	otpH := handler.NewOTPHandler(deps.Ledger)
	userH := handler.NewUserHandler(userSvc)
	categoryH := handler.NewCategoryHandler(categorySvc)
	projectH := handler.NewProjectHandler(projectSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	paymentH := handler.NewPaymentHandler(paymentSvc)
	messageH := handler.NewMessageHandler(messageSvc)
	reviewH := handler.NewReviewHandler(reviewSvc)
	fileH := handler.NewFileHandler(fileSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", healthH.Ping)

		r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/verify", authH.VerifyRegistration)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/auth/password-reset/request", authH.RequestPasswordReset)
		r.With(sensitiveRL.Limit).Post("/auth/password-reset/verify", authH.VerifyPasswordReset)
		r.With(sensitiveRL.Limit).Post("/auth/password-reset/confirm", authH.ResetPassword)
		r.With(sensitiveRL.Limit).Post("/otp/request", otpH.Request)
		r.With(sensitiveRL.Limit).Post("/otp/verify", otpH.Verify)

		r.Get("/categories", categoryH.List)
		r.Get("/categories/{id}", categoryH.Get)
		r.Get("/projects", projectH.List)
		r.Get("/projects/{id}", projectH.Get)
		r.Get("/projects/{id}/reviews", reviewH.ListByProject)
		r.Get("/projects/{id}/files", fileH.ListByProject)

		// Payment provider callbacks authenticate out of band, not with
		// user bearer tokens.
		r.Post("/payments/events", paymentH.Webhook)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/users/me", userH.GetMe)
			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)
			r.Post("/users/change-password", userH.ChangePassword)
			r.Post("/auth/account-verification/request", authH.RequestAccountVerification)
			r.Post("/auth/account-verification/confirm", authH.ConfirmAccountVerification)

			r.Post("/projects", projectH.Create)
			r.Put("/projects/{id}", projectH.Update)
			r.Delete("/projects/{id}", projectH.Delete)

			r.Post("/orders", orderH.Create)
			r.Get("/orders", orderH.List)
			r.Get("/orders/{id}", orderH.Get)
			r.Put("/orders/{id}/status", orderH.UpdateStatus)
			r.Get("/orders/{id}/payments", paymentH.ListByOrder)

			r.Post("/payments", paymentH.Create)
			r.Get("/payments/{id}", paymentH.Get)
			r.Get("/wallet", paymentH.Wallet)
			r.Get("/wallet/entries", paymentH.WalletEntries)
			r.Post("/wallet/withdrawals", paymentH.Withdraw)

			r.Post("/messages", messageH.Send)
			r.Get("/messages/unread", messageH.ListUnread)
			r.Put("/messages/{id}/read", messageH.MarkRead)

			r.Post("/reviews", reviewH.Create)
			r.Delete("/reviews/{id}", reviewH.Delete)

			r.Post("/files", fileH.Upload)
			r.Get("/files/{id}", fileH.Get)
			r.Delete("/files/{id}", fileH.Delete)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Delete("/users/{id}", userH.Delete)

				r.Post("/categories", categoryH.Create)
				r.Put("/categories/{id}", categoryH.Update)
				r.Delete("/categories/{id}", categoryH.Delete)
			})
		})
	})

	return r
}
