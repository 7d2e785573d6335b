package router

import (
	"database/sql"
	"net/http"

	"catalog-api/internal/config"
	"catalog-api/internal/handlers"
	"catalog-api/internal/middleware"
	"catalog-api/internal/models"
	"catalog-api/internal/services"
	"catalog-api/internal/storage"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const idPath = "/{id:[0-9]+}"

func SetupRouter(cfg config.Config, db *sql.DB, store storage.FileStore, logger zerolog.Logger) *mux.Router {
	categoryService := services.NewCategoryService(db, logger)
	productService := services.NewProductService(db, logger, categoryService, store)
	imageService := services.NewImageService(db, logger, productService, store, cfg.MaxUploadBytes)
	userService := services.NewUserService(db, logger)
	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTTTL, logger)

	r := mux.NewRouter()
	urls := handlers.NewURLBuilder(r, cfg.PublicBaseURL)

	authHandler := handlers.NewAuthHandler(userService, authService, logger)
	userHandler := handlers.NewUserHandler(userService, logger)
	categoryHandler := handlers.NewCategoryHandler(categoryService, logger)
	productHandler := handlers.NewProductHandler(productService, urls, logger)
	imageHandler := handlers.NewImageHandler(imageService, urls, cfg.MaxUploadBytes, logger)

	rateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	r.Use(middleware.ErrorHandling(logger))
	r.Use(middleware.PerformanceMonitoring(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	r.Use(rateLimiter.Middleware())

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Subrouters share the /api prefix; a request falls through to the next
	// one when only its method differs.
	public := api.PathPrefix("").Subrouter()
	public.Use(middleware.RequestValidation())
	public.HandleFunc("/register", authHandler.Register).Methods("POST")
	public.HandleFunc("/login", authHandler.Login).Methods("POST")
	public.HandleFunc("/users", userHandler.GetUsers).Methods("GET")
	public.HandleFunc("/users"+idPath, userHandler.GetUser).Methods("GET")
	public.HandleFunc("/categories", categoryHandler.GetCategories).Methods("GET")
	public.HandleFunc("/categories"+idPath, categoryHandler.GetCategory).Methods("GET")
	public.HandleFunc("/products", productHandler.GetProducts).Methods("GET")
	public.HandleFunc("/products"+idPath, productHandler.GetProduct).Methods("GET")
	public.HandleFunc("/images", imageHandler.GetImages).Methods("GET")
	public.HandleFunc("/images"+idPath, imageHandler.GetImage).Methods("GET").Name(handlers.ImageRoute)

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Authentication(authService, userService, logger))
	protected.HandleFunc("/token/refresh", authHandler.Refresh).Methods("POST")

	users := protected.PathPrefix("/users").Subrouter()
	users.Use(middleware.RequestValidation())
	users.HandleFunc(idPath, userHandler.UpdateUser).Methods("PATCH")
	users.HandleFunc(idPath, userHandler.DeleteUser).Methods("DELETE")

	editors := protected.PathPrefix("").Subrouter()
	editors.Use(middleware.RequireRole(models.EditorRoles...))
	editors.HandleFunc("/products"+idPath+"/images", imageHandler.UploadImage).Methods("POST")
	editors.HandleFunc("/images"+idPath, imageHandler.UpdateImage).Methods("PATCH")
	editors.HandleFunc("/images"+idPath, imageHandler.DeleteImage).Methods("DELETE")

	admin := protected.PathPrefix("").Subrouter()
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.Use(middleware.RequestValidation())
	admin.HandleFunc("/categories", categoryHandler.CreateCategory).Methods("POST")
	admin.HandleFunc("/categories"+idPath, categoryHandler.UpdateCategory).Methods("PATCH")
	admin.HandleFunc("/categories"+idPath, categoryHandler.DeleteCategory).Methods("DELETE")
	admin.HandleFunc("/products", productHandler.CreateProduct).Methods("POST")
	admin.HandleFunc("/products"+idPath, productHandler.UpdateProduct).Methods("PATCH")
	admin.HandleFunc("/products"+idPath, productHandler.DeleteProduct).Methods("DELETE")

	r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	// preflight requests match no route; CORS answers them here
	r.MethodNotAllowedHandler = middleware.CORS()(http.HandlerFunc(handlers.MethodNotAllowed))

	return r
}
