package main

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

type wsRouteRequest struct {
	ID    string `json:"id"`
	Start Point  `json:"start"`
	End   Point  `json:"end"`
}

type wsRouteResponse struct {
	ID string `json:"id"`
	RouteResponse
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsConn serialises writes; results arrive from several workers at once
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// GET /ws - Stream route requests over a websocket. Each request is answered
// once with a message carrying the same id; answers may arrive out of order.
func (s *Service) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ Websocket upgrade failed: %v\n", err)
		return
	}
	client := &wsConn{conn: conn}
	defer conn.Close()

	log.Printf("🔌 Websocket client connected: %s\n", r.RemoteAddr)

	var pending sync.WaitGroup
	defer pending.Wait()

	for {
		var req wsRouteRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("⚠️  Websocket read failed: %v\n", err)
			}
			log.Printf("🔌 Websocket client disconnected: %s\n", r.RemoteAddr)
			return
		}

		id := req.ID
		pending.Add(1)
		err := s.requests.Submit(PathRequest{
			Start: req.Start,
			End:   req.End,
			Callback: func(result PathResult, err error) {
				defer pending.Done()
				if err := client.send(wsResponse(id, result, err)); err != nil {
					log.Printf("⚠️  Websocket write failed for %q: %v\n", id, err)
				}
			},
		})
		if err != nil {
			pending.Done()
			if err := client.send(wsResponse(id, PathResult{}, err)); err != nil {
				log.Printf("⚠️  Websocket write failed for %q: %v\n", id, err)
				return
			}
		}
	}
}

func wsResponse(id string, result PathResult, err error) wsRouteResponse {
	if err != nil {
		_, message := routeStatus(err)
		return wsRouteResponse{ID: id, RouteResponse: RouteResponse{Path: []Point{}, Message: message}}
	}

	response := RouteResponse{
		Path:     result.Waypoints,
		Success:  result.Success,
		Cost:     result.Cost,
		Expanded: result.Expanded,
	}
	if !result.Success {
		response.Message = "No path found"
	}
	return wsRouteResponse{ID: id, RouteResponse: response}
}
