package conversation

import (
	"fmt"
	"strings"
	"time"

	"metbot/app/service/calendar"
	"metbot/app/service/contact"

	"github.com/elliotchance/pie/v2"
)

const optionsList = "now / tomorrow / Friday / in 2 hours / in 5 minutes / no"

const helpMessage = "I log people you meet and remind you to follow up.\n" +
	"Start with: met <name> at <event>, <what you talked about>\n" +
	"Commands: summary, cancel"

const rePromptMessage = "Sorry, I didn't catch that. Reply: " + optionsList

const lostDraftMessage = "Something went wrong with that conversation, starting over."

const calendarFallback = "couldn't check your calendar"

const maxPromptSlots = 3

func promptMessage(name, event, availability string) string {
	return fmt.Sprintf("Got it: %s (%s).\nYou look free: %s.\nWhen should I remind you to follow up? Reply: %s",
		name, event, availability, optionsList)
}

func availabilityLine(slots []calendar.Slot) string {
	if len(slots) == 0 {
		return calendarFallback
	}

	lines := pie.Map(pie.Top(slots, maxPromptSlots), func(s calendar.Slot) string {
		return fmt.Sprintf("%s %s", s.DayOfWeek, s.StartTime)
	})

	return strings.Join(lines, ", ")
}

func confirmNow(name string) string {
	return fmt.Sprintf("Sending your follow-up to %s now.", name)
}

const confirmTomorrow = "I'll remind you tomorrow morning."

func confirmCustom(at time.Time) string {
	return fmt.Sprintf("I'll remind you on %s.", at.Format("Mon, 02 Jan at 15:04"))
}

func confirmNoReminder(name string) string {
	return fmt.Sprintf("Saved %s without a reminder.", name)
}

func confirmCancelled(name string) string {
	return fmt.Sprintf("Cancelled. %s was not saved.", name)
}

func storageFailure(name string) string {
	return fmt.Sprintf("Couldn't save %s, sorry. Try again in a moment.", name)
}

func followUpMessage(name, event, topicSentence string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s! Great meeting you at %s.", name, event)

	if topicSentence != "" {
		b.WriteString(" ")
		b.WriteString(topicSentence)
	}

	b.WriteString(" Would love to continue the conversation, do you have time for a coffee soon?")

	return b.String()
}

func summaryMessage(windowDays int, summary contact.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d contacts in the last %d days.", summary.Total, windowDays)

	for _, rec := range summary.Recent {
		fmt.Fprintf(&b, "\n- %s (%s): %s", rec.Name, rec.Event, rec.Status)
	}

	return b.String()
}
