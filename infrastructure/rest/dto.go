package rest

import (
	"presence-chat/domain"

	"github.com/samber/lo"
)

// timeLayout renders message times the way chat clients display them.
const timeLayout = "15:04:05"

type joinRequest struct {
	Name string `json:"name"`
}

type messageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
}

type participantResponse struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

type messageResponse struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

type createdResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toParticipantResponse(p domain.Participant) participantResponse {
	return participantResponse{Name: p.Name, LastStatus: p.LastSeen.UnixMilli()}
}

func toParticipantsResponse(participants []domain.Participant) []participantResponse {
	return lo.Map(participants, func(p domain.Participant, _ int) participantResponse {
		return toParticipantResponse(p)
	})
}

func toMessagesResponse(messages []domain.Message, broadcastLiteral string) []messageResponse {
	return lo.Map(messages, func(m domain.Message, _ int) messageResponse {
		return messageResponse{
			ID:   m.ID.String(),
			From: m.From,
			To:   m.To.Render(broadcastLiteral),
			Text: m.Text,
			Type: string(m.Kind),
			Time: m.At.Format(timeLayout),
		}
	})
}
