package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/neonpay/neonpay-gobackend/internal/clock"
	"github.com/neonpay/neonpay-gobackend/internal/db"
	"github.com/neonpay/neonpay-gobackend/internal/handlers"
	"github.com/neonpay/neonpay-gobackend/internal/services"
	"github.com/neonpay/neonpay-gobackend/internal/store"
	"github.com/neonpay/neonpay-gobackend/internal/ws"
)

func main() {
	// Load .env
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Error loading .env: %s", err)
	}

	// Connect to MongoDB
	uri := os.Getenv("MONGOURI")
	if uri == "" {
		log.Fatal("MONGOURI environment variable not set")
	}
	client, err := db.Connect(uri)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()
	log.Println("Successfully connected to MongoDB")

	database := client.Database("neonpaydb")

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	// Initialize stores, services and handlers
	hub := ws.NewHub()

	paymentStore := store.NewMongoPaymentStore(database)
	paymentService := services.NewPaymentService(paymentStore, clock.System(), hub)
	paymentHandler := handlers.NewPaymentHandler(paymentService, jwtSecret)

	userStore := store.NewMongoUserStore(database)
	userService := services.NewUserService(userStore)
	userHandler := handlers.NewUserHandler(userService, jwtSecret)

	wsHandler := handlers.NewWSHandler(hub, jwtSecret)

	// Set up router
	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET", "HEAD")

	router.HandleFunc("/api/auth/signup", userHandler.Signup).Methods("POST")
	router.HandleFunc("/api/auth/login", userHandler.Login).Methods("POST")
	router.HandleFunc("/api/user/profile", userHandler.GetProfile).Methods("GET")
	router.HandleFunc("/api/user/profile", userHandler.UpdateProfile).Methods("PUT")

	router.HandleFunc("/api/payment", paymentHandler.CreatePayment).Methods("POST")
	router.HandleFunc("/api/payment/{paymentID}", paymentHandler.GetPayment).Methods("GET")
	router.HandleFunc("/api/payment/{paymentID}/confirm", paymentHandler.ConfirmPayment).Methods("POST")
	router.HandleFunc("/api/payments", paymentHandler.GetPayments).Methods("GET")
	router.HandleFunc("/api/stats", paymentHandler.GetStats).Methods("GET")

	router.HandleFunc("/ws", wsHandler.ServeWS).Methods("GET")

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	server := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
		// No WriteTimeout: the websocket endpoint holds connections open.
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(server.ListenAndServe())
}
