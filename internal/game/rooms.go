package game

import "go.uber.org/zap"

// CreateRoom opens a new room with the host as its sole, not-ready
// member and records the room on the host's directory entry.
func (c *Coordinator) CreateRoom(hostID string) (RoomView, error) {
	if hostID == "" {
		return RoomView{}, validationErrorf("host id is required")
	}
	if _, err := c.players.FindPlayer(hostID); err != nil {
		return RoomView{}, notFoundErrorf("host player not found")
	}
	room, err := c.store.CreateRoom(hostID)
	if err != nil {
		return RoomView{}, err
	}
	if err := c.players.SetCurrentRoom(hostID, room.Code); err != nil {
		c.logger.Warn("set current room failed", zap.String("player_id", hostID), zap.Error(err))
	}
	c.logger.Info("room created", zap.String("code", room.Code), zap.String("host_id", hostID))
	view := c.roomView(room)
	c.bus.Publish(room.Code, EventRoomUpdated, view)
	return view, nil
}

// Room returns the client-facing view of a room.
func (c *Coordinator) Room(code string) (RoomView, error) {
	room, ok := c.store.GetRoom(code)
	if !ok {
		return RoomView{}, notFoundErrorf("room not found")
	}
	return c.roomView(room), nil
}

// JoinRoom appends the player to a waiting room's membership.
func (c *Coordinator) JoinRoom(code, playerID string) (RoomView, error) {
	if playerID == "" {
		return RoomView{}, validationErrorf("player id is required")
	}
	if _, err := c.players.FindPlayer(playerID); err != nil {
		return RoomView{}, notFoundErrorf("player not found")
	}
	room, err := c.store.UpdateRoom(code, func(room *Room) error {
		if room.Status != RoomWaiting {
			return conflictErrorf("room is not accepting new players")
		}
		if room.member(playerID) != nil {
			return conflictErrorf("player already in room")
		}
		room.Members = append(room.Members, Member{PlayerID: playerID})
		// A fresh member is never ready, so any signaled stabilization
		// is over.
		room.readySignaled = false
		return nil
	})
	if err != nil {
		return RoomView{}, err
	}
	if err := c.players.SetCurrentRoom(playerID, room.Code); err != nil {
		c.logger.Warn("set current room failed", zap.String("player_id", playerID), zap.Error(err))
	}
	c.logger.Info("player joined room", zap.String("code", room.Code), zap.String("player_id", playerID))
	view := c.roomView(room)
	c.bus.Publish(room.Code, EventRoomUpdated, view)
	return view, nil
}

// SetReady flips a member's ready flag and re-evaluates readiness. The
// returned flag is true exactly once per stabilization in which every
// member of a room with at least two players is ready; repeating an
// identical ready state does not re-signal.
func (c *Coordinator) SetReady(code, playerID string, ready bool) (RoomView, bool, error) {
	signaled := false
	room, err := c.store.UpdateRoom(code, func(room *Room) error {
		member := room.member(playerID)
		if member == nil {
			return notFoundErrorf("player not in room")
		}
		member.Ready = ready
		if room.allReady() {
			if !room.readySignaled {
				room.readySignaled = true
				signaled = true
			}
		} else {
			room.readySignaled = false
		}
		return nil
	})
	if err != nil {
		return RoomView{}, false, err
	}
	view := c.roomView(room)
	c.bus.Publish(room.Code, EventRoomUpdated, view)
	if signaled {
		c.logger.Info("room ready", zap.String("code", room.Code), zap.Int("players", len(room.Members)))
	}
	return view, signaled, nil
}

// LeaveRoom removes the player, closing the room when it empties and
// otherwise promoting the earliest-joined remaining member if the host
// left.
func (c *Coordinator) LeaveRoom(code, playerID string) (LeaveResult, error) {
	room, closed, err := c.store.RemoveMember(code, playerID)
	if err != nil {
		return LeaveResult{}, err
	}
	if err := c.players.SetCurrentRoom(playerID, ""); err != nil {
		c.logger.Warn("clear current room failed", zap.String("player_id", playerID), zap.Error(err))
	}
	if closed {
		c.logger.Info("room closed", zap.String("code", normalizeCode(code)))
		return LeaveResult{Closed: true, Room: RoomView{Code: normalizeCode(code)}}, nil
	}
	c.logger.Info("player left room", zap.String("code", room.Code), zap.String("player_id", playerID))
	view := c.roomView(room)
	c.bus.Publish(room.Code, EventRoomUpdated, view)
	return LeaveResult{Room: view}, nil
}
