package bot

import (
	"fmt"
	"log/slog"
	"strings"
	"weatherbot/entity"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
)

// Notify delivers an orchestrator outcome to the actor's chat. This
// is the presentation end of the delivery pipeline; denials and
// failures always produce a message, never a silently dropped
// delivery.
func (t *TgBot) Notify(n entity.Notification) {
	var text string
	switch n.Kind {
	case entity.NotifyDeliverySucceeded:
		text = formatReport(n.Report)
	case entity.NotifyQuotaExhausted:
		text = "Daily weather is paused: the weather service budget is exhausted."
		if !n.ResetAt.IsZero() {
			text += fmt.Sprintf(" Capacity returns around %s.", n.ResetAt.UTC().Format("15:04 MST"))
		}
	case entity.NotifyTransientFailure:
		text = "The weather service is unavailable right now, today's delivery was skipped."
	case entity.NotifyRateLimited:
		text = fmt.Sprintf("Request limit exceeded, try again in %d seconds.", int(n.RetryAfter.Seconds())+1)
	case entity.NotifyMessageTooLong:
		text = "Your message is too long, please shorten it."
	default:
		t.log.With(slog.String("kind", string(n.Kind))).Warn("unknown notification kind")
		return
	}
	t.plainResponse(n.ActorID, Sanitize(text))
}

// NotifyAdmins forwards an operational message to every admin that
// accepts warnings.
func (t *TgBot) NotifyAdmins(msg string) {
	t.SendMessageWithLevel(Sanitize(msg), slog.LevelWarn)
}

func formatReport(r *entity.WeatherReport) string {
	var sb strings.Builder
	if r.PlaceLabel != "" {
		sb.WriteString(r.PlaceLabel + "\n")
	}
	sb.WriteString(fmt.Sprintf("%s, %.1f°C (feels like %.1f°C)\n", r.Condition(), r.Temperature, r.FeelsLike))
	sb.WriteString(fmt.Sprintf("Today: %.1f…%.1f°C, wind %.1f m/s", r.TempMin, r.TempMax, r.WindSpeed))
	if r.PrecipChance > 0 {
		sb.WriteString(fmt.Sprintf(", precipitation %d%%", r.PrecipChance))
	}
	if r.Sunrise != "" && r.Sunset != "" {
		sb.WriteString(fmt.Sprintf("\nSun: %s to %s", clockPart(r.Sunrise), clockPart(r.Sunset)))
	}
	return sb.String()
}

// clockPart trims an ISO local datetime ("2006-01-02T15:04") to the
// time of day.
func clockPart(iso string) string {
	if i := strings.IndexByte(iso, 'T'); i >= 0 {
		return iso[i+1:]
	}
	return iso
}

func (t *TgBot) SendMessage(msg string) {
	// Send message to all admins (using default log level)
	t.SendMessageWithLevel(msg, t.minLogLevel)
}

// SendMessageWithLevel sends a message to all admins with the specified log level
func (t *TgBot) SendMessageWithLevel(msg string, level slog.Level) {
	for _, adminId := range t.adminIds {
		adminLevel, exists := t.adminLevels[adminId]
		if !exists {
			adminLevel = t.minLogLevel
		}

		// Only send if the message level is >= the admin's minimum level
		if level >= adminLevel {
			t.plainResponse(adminId, msg)
		}
	}
}

func (t *TgBot) plainResponse(chatId int64, text string) {
	if text == "" {
		t.log.With(
			slog.Int64("id", chatId),
		).Debug("empty message")
		return
	}

	_, err := t.api.SendMessage(chatId, text, &tgbotapi.SendMessageOpts{
		ParseMode: "MarkdownV2",
	})
	if err != nil {
		t.log.With(
			slog.Int64("id", chatId),
		).Warn("sending message", slog.String("error", err.Error()))
		_, err = t.api.SendMessage(chatId, text, &tgbotapi.SendMessageOpts{})
		if err != nil {
			t.log.With(
				slog.Int64("id", chatId),
			).Error("sending safe message", slog.String("error", err.Error()))
		}
	}
}

func Sanitize(input string) string {
	// Define a list of reserved characters that need to be escaped
	reservedChars := "\\_{}#+-.!|()[]=*"

	sanitized := ""
	for _, char := range input {
		if strings.ContainsRune(reservedChars, char) {
			sanitized += "\\" + string(char)
		} else {
			sanitized += string(char)
		}
	}

	return sanitized
}
