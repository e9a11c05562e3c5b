package ws

import "github.com/relaychat/relaychat-backend/internal/service"

// MessageJoinGroup is the join_group event. Membership is checked against
// the database, so a client cannot subscribe to a group it does not belong
// to. Joining an already-joined room is a no-op.
type MessageJoinGroup struct {
	GroupID uint `json:"group_id"`
}

func (msg *MessageJoinGroup) GetType() string {
	return "join_group"
}

func (msg *MessageJoinGroup) Process(ctx *MessageContext) error {
	member, err := ctx.Groups.IsMember(msg.GroupID, ctx.UserID)
	if err != nil {
		return err
	}
	if !member {
		return service.ErrUnauthorized
	}
	ctx.Hub.JoinRoom(ctx.Client, GroupRoom(msg.GroupID))
	return nil
}

// MessageLeaveGroup is the leave_group event; leaving a room the connection
// never joined is a no-op.
type MessageLeaveGroup struct {
	GroupID uint `json:"group_id"`
}

func (msg *MessageLeaveGroup) GetType() string {
	return "leave_group"
}

func (msg *MessageLeaveGroup) Process(ctx *MessageContext) error {
	ctx.Hub.LeaveRoom(ctx.Client, GroupRoom(msg.GroupID))
	return nil
}
