package notify

import (
	"fmt"
	"log"

	"github.com/slack-go/slack"

	"triagebot/internal/domain"
)

// SlackAlerter posts an ops-channel message whenever a stored feedback
// item escalates to high severity. Email to citizens is handled by the
// portal; this channel is for duty staff.
type SlackAlerter struct {
	api       *slack.Client
	channelID string
	logger    *log.Logger
}

func NewSlackAlerter(botToken, channelID string, logger *log.Logger) *SlackAlerter {
	if logger == nil {
		logger = log.Default()
	}
	return &SlackAlerter{
		api:       slack.New(botToken),
		channelID: channelID,
		logger:    logger,
	}
}

func (a *SlackAlerter) SeverityEscalated(fb domain.Feedback, result domain.Classification) error {
	msg := fmt.Sprintf(":rotating_light: Phản ánh #%d chuyển mức độ CAO (tin cậy %.0f%%): %s",
		fb.ID, result.SeverityConfidence*100, fb.Title)
	_, _, err := a.api.PostMessage(a.channelID, slack.MsgOptionText(msg, false))
	if err != nil {
		a.logger.Printf("alert post error feedback=%d: %v", fb.ID, err)
		return err
	}
	a.logger.Printf("alert posted feedback=%d severity=high", fb.ID)
	return nil
}
