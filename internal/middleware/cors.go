package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// 許可するオリジン：設定したフロントURL・localhost・vercelのプレビュー
func AllowedOrigin(feURL string) func(origin string) (bool, error) {
	feURL = strings.TrimRight(strings.TrimSpace(feURL), "/")
	return func(origin string) (bool, error) {
		if origin == "" {
			return false, nil
		}
		if feURL != "" && origin == feURL {
			return true, nil
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false, nil
		}
		host := u.Hostname()
		switch {
		case host == "localhost", host == "127.0.0.1":
			return true, nil
		case u.Scheme == "https" && strings.HasSuffix(host, ".vercel.app"):
			return true, nil
		}
		return false, nil
	}
}

func CORS(feURL string) echo.MiddlewareFunc {
	return echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOriginFunc: AllowedOrigin(feURL),
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderContentType, echo.HeaderAuthorization,
		},
	})
}
