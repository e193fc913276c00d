package clock

import "time"

// System возвращает текущее время в часовом поясе бизнеса
type System struct {
	loc *time.Location
}

func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.Local
	}
	return System{loc: loc}
}

func (s System) Now() time.Time {
	return time.Now().In(s.loc)
}

// Fixed всегда возвращает одно и то же время (для тестов)
type Fixed struct {
	t time.Time
}

func NewFixed(t time.Time) Fixed {
	return Fixed{t: t}
}

func (f Fixed) Now() time.Time {
	return f.t
}
