package chat

import (
	"fmt"
	"time"

	"github.com/sweax/sweax/plugin/ai/router"
)

var monthNames = []string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Pazartesi",
	time.Tuesday:   "Salı",
	time.Wednesday: "Çarşamba",
	time.Thursday:  "Perşembe",
	time.Friday:    "Cuma",
	time.Saturday:  "Cumartesi",
	time.Sunday:    "Pazar",
}

// answerDateTime computes a deterministic reply for a date/time query.
// now must already be localized.
func answerDateTime(query router.DateTimeQuery, now time.Time) string {
	switch query.Kind {
	case router.DateTimeClock:
		return fmt.Sprintf("Şu an saat (İstanbul): %s", now.Format("15:04"))
	case router.DateTimeYear:
		return fmt.Sprintf("%d yılındayız.", now.Year())
	case router.DateTimeYearsFrom:
		return fmt.Sprintf("%d yıl sonra: %d", query.Years, now.Year()+query.Years)
	case router.DateTimeToday:
		return fmt.Sprintf("Bugün tarih: %s (İstanbul).", now.Format("02.01.2006"))
	case router.DateTimeMonth:
		return fmt.Sprintf("%s ayındayız.", monthNames[now.Month()-1])
	case router.DateTimeWeekday:
		return fmt.Sprintf("Bugün %s.", weekdayNames[now.Weekday()])
	case router.DateTimeTomorrow:
		return fmt.Sprintf("Yarın: %s", now.AddDate(0, 0, 1).Format("02.01.2006"))
	case router.DateTimeYesterday:
		return fmt.Sprintf("Dün: %s", now.AddDate(0, 0, -1).Format("02.01.2006"))
	default:
		return ""
	}
}
