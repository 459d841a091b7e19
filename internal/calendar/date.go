package calendar

import (
	"fmt"
	"time"
)

// Date календарная дата без времени суток и часового пояса.
// Получается усечением момента времени в зоне пользователя ровно один раз,
// на границе календарной логики — дальше сравниваются только Year/Month/Day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf усекает момент времени до календарной даты в указанной зоне
func DateOf(t time.Time, loc *time.Location) Date {
	local := t.In(loc)
	return Date{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

// Time возвращает полночь этой даты в указанной зоне
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays возвращает дату через n дней (n может быть отрицательным)
func (d Date) AddDays(n int) Date {
	t := d.Time(time.UTC).AddDate(0, 0, n)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Weekday возвращает день недели этой даты
func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// Before сравнивает даты хронологически
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}
