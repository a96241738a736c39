package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	rh "github.com/Jvargast/newsletter-fisuc/route-handlers"
	"github.com/Jvargast/newsletter-fisuc/webutil"
)

const (
	apiBasePath     = "/api"
	mediaBasePath   = "/media"
	uploadsBasePath = "/uploads"
)

const (
	paramName = "name" // Path parameter for asset names
)

func SetupRoutes(
	newsletterHandler *rh.NewsletterHandler,
	mediaHandler *rh.MediaHandler,
	uploadDir string,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Log every request
	r.Use(middleware.Recoverer) // Recover from panics
	r.Use(middleware.Timeout(60 * time.Second))
	// The admin client is a static browser page; let it talk to us from anywhere.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{webutil.HeaderContentType},
	}))

	r.Route(apiBasePath, func(r chi.Router) {
		r.Post("/build", webutil.MakeHandler(newsletterHandler.HandleBuild))
		r.Post("/send-test", webutil.MakeHandler(newsletterHandler.HandleSendTest))
		r.Post("/upload", webutil.MakeHandler(mediaHandler.HandleUpload))

		r.Route(mediaBasePath, func(r chi.Router) {
			r.Get("/", webutil.MakeHandler(mediaHandler.HandleListMedia))
			r.Delete("/{"+paramName+"}", webutil.MakeHandler(mediaHandler.HandleDeleteMedia))
		})
	})

	// Uploaded images are served directly so previews render in a browser
	// without attachment resolution.
	fileServer := http.StripPrefix(uploadsBasePath+"/", http.FileServer(http.Dir(uploadDir)))
	r.Get(uploadsBasePath+"/*", fileServer.ServeHTTP)

	// Health check endpoint
	r.Get("/healthz", handleHealthCheck)

	return r
}

func handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
