package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"decolei/internal/pkg/cache"
	"decolei/internal/pkg/logger"
)

const rateLimitMessage = "Limite de requisições excedido. Tente novamente mais tarde."

// localLimiters guarda um limitador em memória por IP, usado quando o Redis falha.
type localLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
}

func (s *localLimiters) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[ip]
	if !ok {
		l = rate.NewLimiter(s.every, s.burst)
		s.limiters[ip] = l
	}
	return l
}

// RateLimiter aplica uma janela fixa de `limit` requisições por `period` e por IP,
// contada no Redis. Se o Redis estiver indisponível, cai para um token bucket local
// com a mesma taxa média.
// Com limit ou period não positivos o limitador fica desligado.
func RateLimiter(client cache.Client, limit int, period time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	if limit <= 0 || period <= 0 {
		log.Warn("Limitador de requisições desligado: limite ou período inválido.", logger.Fields{"limit": limit, "period": period.String()})
		return func(next http.Handler) http.Handler { return next }
	}

	fallback := &localLimiters{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(period / time.Duration(limit)),
		burst:    limit,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			key := "rate-limit:" + ip

			count, err := client.Incr(r.Context(), key)
			if err != nil {
				log.Warn("Redis indisponível para o limitador. Usando limitador local.", limiterFields(ip, err))
				if !fallback.get(ip).Allow() {
					tooManyRequests(w)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				if err := client.Expire(r.Context(), key, period); err != nil {
					log.Warn("Falha ao definir expiração do contador de requisições.", limiterFields(ip, err))
				}
			}

			if int(count) > limit {
				tooManyRequests(w)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-int(count)))
			next.ServeHTTP(w, r)
		})
	}
}

func limiterFields(ip string, err error) logger.Fields {
	return logger.Fields{"ip": ip, "error": err.Error()}
}

func tooManyRequests(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"code":429,"category":"RATE_LIMITED","message":"` + rateLimitMessage + `"}`))
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
