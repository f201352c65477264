package routes

import (
	"net/http"

	"fournil/auth"
	"fournil/cart"
	"fournil/catalog"
	"fournil/middleware"
	"fournil/orders"
	"fournil/ratelim"
	"fournil/refdata"
	"fournil/users"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(auth.Register))
	router.POST("/api/auth/login", rl.Limit(auth.Login))
	router.GET("/api/auth/verify", middleware.Authenticate(auth.Verify))
}

func AddPastryRoutes(router *httprouter.Router, api *catalog.API, rl *ratelim.RateLimiter) {
	router.GET("/api/pastries", rl.Limit(api.GetPastries))
	router.GET("/api/pastries/popular", rl.Limit(api.GetPopular))
	router.GET("/api/pastries/slug/:slug", rl.Limit(api.GetPastryBySlug))
	router.GET("/api/pastries/item/:id", rl.Limit(api.GetPastry))

	router.POST("/api/pastries", middleware.RequireStaff(api.CreatePastry))
	router.PUT("/api/pastries/item/:id", middleware.RequireStaff(api.UpdatePastry))
	router.DELETE("/api/pastries/item/:id", middleware.RequireStaff(api.DeletePastry))
	router.POST("/api/pastries/item/:id/images", middleware.RequireStaff(api.UploadPastryImages))
}

func AddCartRoutes(router *httprouter.Router) {
	router.GET("/api/cart", middleware.Authenticate(cart.GetCart))
	router.DELETE("/api/cart", middleware.Authenticate(cart.ClearCart))
	router.GET("/api/cart/total", middleware.Authenticate(cart.GetTotal))
	router.POST("/api/cart/items", middleware.Authenticate(cart.AddToCart))
	router.PUT("/api/cart/items/:itemId", middleware.Authenticate(cart.UpdateItemQuantity))
	router.DELETE("/api/cart/items/:itemId", middleware.Authenticate(cart.RemoveItem))
}

func AddOrderRoutes(router *httprouter.Router, api *orders.API, rl *ratelim.RateLimiter) {
	router.POST("/api/orders", rl.Limit(middleware.Authenticate(api.Checkout)))
	router.GET("/api/orders", middleware.Authenticate(api.GetMyOrders))
	router.GET("/api/orders/item/:orderId", middleware.Authenticate(api.GetOrder))
	router.GET("/api/orders/item/:orderId/receipt", middleware.Authenticate(api.GetReceipt))

	router.GET("/api/orders/admin/all", middleware.RequireStaff(api.GetAllOrders))
	router.PUT("/api/orders/admin/:orderId/status", middleware.RequireStaff(api.UpdateStatus))
	router.GET("/api/orders/verify", middleware.RequireStaff(api.VerifyPickup))

	// Websocket; auth happens inside the handler because browsers cannot set
	// headers on the handshake.
	router.GET("/api/orders/updates", api.StatusFeed)
}

func AddUserRoutes(router *httprouter.Router, api *users.API) {
	router.GET("/api/users/dietary-preferences", middleware.Authenticate(api.GetPreferences))
	router.PUT("/api/users/dietary-preferences", middleware.Authenticate(api.SetPreferences))
	router.POST("/api/users/dietary-preferences/:dietId", middleware.Authenticate(api.AddPreference))
	router.DELETE("/api/users/dietary-preferences/:dietId", middleware.Authenticate(api.RemovePreference))
	router.GET("/api/users/available-diets", api.GetAvailableDiets)
}

func AddRefDataRoutes(router *httprouter.Router, api *refdata.API, rl *ratelim.RateLimiter) {
	router.GET("/api/categories", rl.Limit(api.GetCategories))
	router.GET("/api/diets", rl.Limit(api.GetDiets))

	router.POST("/api/categories", middleware.RequireAdmin(api.CreateCategory))
	router.DELETE("/api/categories/:id", middleware.RequireAdmin(api.DeleteCategory))
	router.POST("/api/diets", middleware.RequireAdmin(api.CreateDiet))
	router.DELETE("/api/diets/:id", middleware.RequireAdmin(api.DeleteDiet))
	router.POST("/api/refdata/refresh", middleware.RequireAdmin(api.RefreshCache))
}

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/pastrypic/*filepath", http.Dir("static/pastrypic"))
}
