package chathub

import (
	"context"
	"errors"
	"log"
	"time"

	"chatspace/backend/internal/storage"
)

// Reaper — планова зачистка неактивних приватних сесій. "Зараз" та поріг
// інжектуються, щоб sweep був детермінованим у тестах.
type Reaper struct {
	Storage   storage.Storage
	Sessions  *SessionService
	Interval  time.Duration
	Threshold time.Duration
	Now       func() time.Time
}

// NewReaper створює reaper із типовим годинником time.Now.
func NewReaper(s storage.Storage, sessions *SessionService, interval, threshold time.Duration) *Reaper {
	return &Reaper{
		Storage:   s,
		Sessions:  sessions,
		Interval:  interval,
		Threshold: threshold,
		Now:       time.Now,
	}
}

// Run запускає цикл зачистки до скасування контексту.
func (r *Reaper) Run(ctx context.Context) {
	log.Printf("Reaper started: interval=%s threshold=%s", r.Interval, r.Threshold)
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reaper stopped.")
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep закриває всі приватні кімнати з updated_at старішим за поріг.
// Кожна кімната обробляється незалежно: помилка однієї не зриває решту.
// Гонка з адмін-закриттям (кімнату вже видалено) проковтується мовчки.
func (r *Reaper) Sweep() int {
	cutoff := r.Now().Add(-r.Threshold)
	rooms, err := r.Storage.FindStaleSessions(cutoff)
	if err != nil {
		log.Printf("ERROR: Reaper sweep failed to list stale sessions: %v", err)
		return 0
	}

	closed := 0
	for _, room := range rooms {
		err := r.Sessions.Close(room.ID, nil)
		if err != nil {
			if errors.Is(err, storage.ErrRoomNotFound) {
				continue // вже закрита паралельно
			}
			log.Printf("ERROR: Reaper failed to close session %s: %v", room.ID, err)
			continue
		}
		closed++
	}
	if closed > 0 {
		log.Printf("Reaper closed %d inactive session(s).", closed)
	}
	return closed
}
