package monitor

import (
	"fmt"
	"log/slog"
	"time"
)

// Session 交易时段, 分钟数表示, 两端均包含
type Session struct {
	Start int
	End   int
}

// ParseSessions 解析 [["09:30","11:30"],["13:00","15:00"]], 非法的时段记录告警后跳过
func ParseSessions(raw [][]string) []Session {
	sessions := make([]Session, 0, len(raw))
	for _, pair := range raw {
		session, err := parseSession(pair)
		if err != nil {
			slog.Warn("skip trading session", "session", pair, "error", err)
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions
}

func parseSession(pair []string) (Session, error) {
	if len(pair) != 2 {
		return Session{}, fmt.Errorf("trading session %v: want [start, end]", pair)
	}
	start, err := parseClock(pair[0])
	if err != nil {
		return Session{}, err
	}
	end, err := parseClock(pair[1])
	if err != nil {
		return Session{}, err
	}
	if end < start {
		return Session{}, fmt.Errorf("trading session %v: end before start", pair)
	}
	return Session{Start: start, End: end}, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("trading session clock %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// InSession 没有配置时段视为全天有效
func InSession(sessions []Session, t time.Time) bool {
	if len(sessions) == 0 {
		return true
	}
	hm := t.Hour()*60 + t.Minute()
	for _, s := range sessions {
		if hm >= s.Start && hm <= s.End {
			return true
		}
	}
	return false
}
