package calendar

import (
	"fmt"
	"time"
)

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

var weekdayShort = [...]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

var weekdayLong = [...]string{
	"domingo", "segunda-feira", "terça-feira", "quarta-feira",
	"quinta-feira", "sexta-feira", "sábado",
}

// MonthName returns the pt-BR month name, capitalised.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// WeekdayShort returns the three-letter pt-BR weekday abbreviation.
func WeekdayShort(d time.Weekday) string {
	return weekdayShort[d]
}

// WeekdayHeaders returns the column headers of the grid, Sunday first.
func WeekdayHeaders() []string {
	return weekdayShort[:]
}

// FormatLong formats t the way the day view header shows it,
// e.g. "sexta-feira, 15 de março de 2024".
func FormatLong(t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d",
		weekdayLong[t.Weekday()], t.Day(), lower(MonthName(t.Month())), t.Year())
}

// FormatShort formats t as DD/MM/YYYY.
func FormatShort(t time.Time) string {
	return t.Format("02/01/2006")
}

func lower(s string) string {
	r := []rune(s)
	if len(r) > 0 && r[0] >= 'A' && r[0] <= 'Z' {
		r[0] += 'a' - 'A'
	}
	return string(r)
}
