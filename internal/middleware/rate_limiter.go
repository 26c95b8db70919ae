package middleware

import (
	"net/http"
	"sync"
	"time"

	"lavanderia/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ventana is a fixed-window per-IP counter. One instance per limiter so the
// login limiter and the general limiter never share windows.
type ventana struct {
	mu      sync.Mutex
	porIP   map[string]*contadorIP
	limite  int
	periodo time.Duration
}

type contadorIP struct {
	n     int
	hasta time.Time
}

func nuevaVentana(limite int, periodo time.Duration) *ventana {
	v := &ventana{porIP: make(map[string]*contadorIP), limite: limite, periodo: periodo}
	go v.purgar()
	return v
}

// permitir counts the request and reports whether it stays under the limit.
func (v *ventana) permitir(ip string) (bool, time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	ahora := time.Now()
	e, ok := v.porIP[ip]
	if !ok || ahora.After(e.hasta) {
		e = &contadorIP{hasta: ahora.Add(v.periodo)}
		v.porIP[ip] = e
	}
	e.n++
	return e.n <= v.limite, e.hasta
}

// purgar drops expired windows so one-off IPs don't accumulate forever.
func (v *ventana) purgar() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ahora := time.Now()
		v.mu.Lock()
		eliminados := 0
		for ip, e := range v.porIP {
			if ahora.After(e.hasta) {
				delete(v.porIP, ip)
				eliminados++
			}
		}
		restantes := len(v.porIP)
		v.mu.Unlock()

		if eliminados > 0 {
			log.Debug().
				Int("purged", eliminados).
				Int("remaining", restantes).
				Msg("rate limiter window purge")
		}
	}
}

var ventanaLogin = nuevaVentana(20, time.Minute)

// LoginRateLimiter caps login attempts at 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, _ := ventanaLogin.permitir(c.ClientIP()); !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiados intentos de login. Intente en 1 minuto."))
			return
		}
		c.Next()
	}
}

// RateLimiter is the general per-IP limiter applied to the whole API surface.
func RateLimiter(limite int, periodo time.Duration) gin.HandlerFunc {
	v := nuevaVentana(limite, periodo)
	return func(c *gin.Context) {
		ok, hasta := v.permitir(c.ClientIP())
		if !ok {
			c.Header("Retry-After", hasta.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}
