package server

import (
	"fmt"
	"net/http"

	qrcode "github.com/skip2/go-qrcode"
)

// handleRoomQR renders the room's join link as a QR code so the host
// can put it on a shared screen.
func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	room, err := s.coord.Room(r.PathValue("code"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	url := fmt.Sprintf("%s/join/%s", s.cfg.PublicBaseURL, room.Code)
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not render qr code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
