package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookmandala/bookstore/internal/handlers"
	"github.com/bookmandala/bookstore/internal/handlers/cart"
	"github.com/bookmandala/bookstore/internal/middleware/auth"
	"github.com/bookmandala/bookstore/internal/response"
)

type Deps struct {
	Auth            *auth.Middleware
	AuthHandler     *handlers.AuthHandler
	OAuthHandler    *handlers.OAuthHandler
	BookHandler     *handlers.BookHandler
	GenreHandler    *handlers.GenreHandler
	ReviewHandler   *handlers.ReviewHandler
	CurrencyHandler *handlers.CurrencyHandler
	CartHandler     *cart.Handler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/check-server", func(c echo.Context) error {
		return response.Success(c, echo.Map{"status": "ok"}, "server is running")
	})
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.GET("/auth/google", d.OAuthHandler.Login)
	e.GET("/auth/google/callback", d.OAuthHandler.Callback)

	v1 := e.Group("/api/v1")

	users := v1.Group("/users")
	users.POST("/register", d.AuthHandler.Register)
	users.POST("/login", d.AuthHandler.Login)
	users.POST("/logout", d.AuthHandler.Logout, d.Auth.RequireAuth)
	users.GET("/get-user", d.AuthHandler.GetUser, d.Auth.RequireAuth)
	users.PATCH("/update-profile", d.AuthHandler.UpdateProfile, d.Auth.RequireAuth)
	users.POST("/change-password", d.AuthHandler.ChangePassword, d.Auth.RequireAuth)
	users.PATCH("/update-avatar", d.AuthHandler.UpdateAvatar, d.Auth.RequireAuth)

	books := v1.Group("/books")
	books.POST("/add-book", d.BookHandler.AddBook, d.Auth.RequireAuth)
	books.GET("/get-all-books", d.BookHandler.GetAllBooks)
	books.GET("/get-book-by-id/:bookId", d.BookHandler.GetBookByID)
	books.GET("/search-book", d.BookHandler.SearchBook)
	books.PATCH("/update-book/:bookId", d.BookHandler.UpdateBook, d.Auth.RequireAuth)
	books.DELETE("/delete-book/:bookId", d.BookHandler.DeleteBook, d.Auth.RequireAuth)

	cartGroup := v1.Group("/cart", d.Auth.RequireAuth)
	cartGroup.POST("/add-to-cart/:bookId", d.CartHandler.AddToCart)
	cartGroup.GET("/get-myCart-data", d.CartHandler.GetCart)
	cartGroup.DELETE("/remove-book-from-cart/:bookId", d.CartHandler.RemoveFromCart)

	genres := v1.Group("/geners")
	genres.POST("/create-geners/:bookId", d.GenreHandler.CreateGenre, d.Auth.RequireAuth)
	genres.GET("/get-all-geners", d.GenreHandler.GetAllGenres)
	genres.GET("/get-single-geners/:genreId", d.GenreHandler.GetGenre)
	genres.PATCH("/update-icon/:genreId", d.GenreHandler.UpdateGenreIcon, d.Auth.RequireAuth)
	genres.PATCH("/update-title/:genreId", d.GenreHandler.UpdateGenreTitle, d.Auth.RequireAuth)
	genres.DELETE("/delete-geners/:genreId", d.GenreHandler.DeleteGenre, d.Auth.RequireAuth)

	reviews := v1.Group("/rateAndReview")
	reviews.POST("/add-rate-and-review/:bookId", d.ReviewHandler.AddReview, d.Auth.RequireAuth)
	reviews.GET("/get-rate-and-review/:bookId", d.ReviewHandler.GetReviewsForBook)
	reviews.PATCH("/edit-rate-and-review/:bookId", d.ReviewHandler.EditReview, d.Auth.RequireAuth)
	reviews.DELETE("/delete-rate-and-review/:bookId", d.ReviewHandler.DeleteReview, d.Auth.RequireAuth)

	currency := v1.Group("/currency")
	currency.POST("/set-price/:bookId", d.CurrencyHandler.SetPrice, d.Auth.RequireAuth)
	currency.GET("/get-price/:bookId", d.CurrencyHandler.GetPrice)
}
