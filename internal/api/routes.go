// 包 api：集中注册机场 HTTP 路由，解析与序列化在此完成，业务语义交给协调器与查询服务
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"airport-api/internal/airport"
	"airport-api/internal/coordinator"
	"airport-api/internal/logger"
	"airport-api/internal/metrics"
	"airport-api/internal/query"
)

const maxBodyBytes = 1 << 20

// BuildRoutes：独立 ServeMux，便于在主入口挂载到 API_BASE 前缀
func BuildRoutes(c *coordinator.Coordinator, q *query.Service) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /nearby", func(w http.ResponseWriter, r *http.Request) {
		v := r.URL.Query()
		lat, lng, radius := v.Get("lat"), v.Get("lng"), v.Get("radius")
		if lat == "" || lng == "" || radius == "" {
			writeError(w, "nearby", http.StatusBadRequest, "Missing required parameters: lat, lng, radius")
			return
		}
		la, e1 := strconv.ParseFloat(lat, 64)
		lo, e2 := strconv.ParseFloat(lng, 64)
		rad, e3 := strconv.ParseFloat(radius, 64)
		if e1 != nil || e2 != nil || e3 != nil {
			writeError(w, "nearby", http.StatusBadRequest, "Invalid parameters: lat, lng, or radius")
			return
		}
		res, err := q.ProximitySearch(r.Context(), lo, la, rad)
		if errors.Is(err, airport.ErrInvalidInput) {
			writeError(w, "nearby", http.StatusBadRequest, "Invalid parameters: lat, lng, or radius")
			return
		}
		if err != nil {
			fail(w, "nearby", err)
			return
		}
		out := make([]nearbyResult, 0, len(res))
		for _, n := range res {
			out = append(out, toNearby(n))
		}
		writeJSON(w, "nearby", http.StatusOK, out)
	})

	mux.HandleFunc("GET /popular", func(w http.ResponseWriter, r *http.Request) {
		res, err := q.PopularAirports(r.Context(), query.DefaultTopK)
		if err != nil {
			fail(w, "popular", err)
			return
		}
		out := make([]popularResult, 0, len(res))
		for _, p := range res {
			out = append(out, toPopular(p))
		}
		writeJSON(w, "popular", http.StatusOK, out)
	})

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		list, err := q.List(r.Context())
		if err != nil {
			fail(w, "list", err)
			return
		}
		writeJSON(w, "list", http.StatusOK, list)
	})

	mux.HandleFunc("GET /{identifier}", func(w http.ResponseWriter, r *http.Request) {
		a, err := q.RecordAccess(r.Context(), r.PathValue("identifier"))
		if err != nil {
			fail(w, "get", err)
			return
		}
		writeJSON(w, "get", http.StatusOK, a)
	})

	mux.HandleFunc("POST /{$}", func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, "create", http.StatusBadRequest, err.Error())
			return
		}
		a, err := c.Create(r.Context(), req.airport())
		if err != nil {
			fail(w, "create", err)
			return
		}
		writeJSON(w, "create", http.StatusCreated, a)
	})

	mux.HandleFunc("PUT /{identifier}", func(w http.ResponseWriter, r *http.Request) {
		var p airport.Patch
		if err := decodeBody(w, r, &p); err != nil {
			writeError(w, "update", http.StatusBadRequest, err.Error())
			return
		}
		a, err := c.Update(r.Context(), r.PathValue("identifier"), p)
		if err != nil {
			fail(w, "update", err)
			return
		}
		writeJSON(w, "update", http.StatusOK, a)
	})

	mux.HandleFunc("DELETE /{identifier}", func(w http.ResponseWriter, r *http.Request) {
		if _, err := c.Delete(r.Context(), r.PathValue("identifier")); err != nil {
			fail(w, "delete", err)
			return
		}
		writeJSON(w, "delete", http.StatusOK, map[string]string{"message": "Airport deleted"})
	})

	return mux
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// statusOf：错误分类到 HTTP 状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, airport.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, airport.ErrInvalidInput), errors.Is(err, airport.ErrInvalidRecord), errors.Is(err, airport.ErrDuplicateIdentifier):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func fail(w http.ResponseWriter, route string, err error) {
	code := statusOf(err)
	msg := err.Error()
	if code == http.StatusNotFound {
		msg = "Airport not found"
	}
	if code == http.StatusInternalServerError {
		logger.L().Error("api_error", "route", route, "err", err)
	}
	writeError(w, route, code, msg)
}

func writeError(w http.ResponseWriter, route string, code int, msg string) {
	writeJSON(w, route, code, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, route string, code int, v any) {
	metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(code/100)+"xx").Inc()
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
