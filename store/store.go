package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"ktx-reserve-cli/model"
)

const (
	appDir          = "ktx-reserve-cli"
	sessionFile     = "session.json"
	recentFile      = "recent_trains.json"
	maxRecentTrains = 8
)

type RecentTrain struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	DepartureStation string `json:"departure_station"`
	ArrivalStation   string `json:"arrival_station"`
}

type trainHistory struct {
	Trains []RecentTrain `json:"trains"`
}

// SessionStore persists the login session between runs.
type SessionStore struct{}

func (SessionStore) Load() (model.Session, error) {
	return LoadSession()
}

func (SessionStore) Save(session model.Session) error {
	return SaveSession(session)
}

func (SessionStore) Clear() error {
	return ClearSession()
}

func LoadSession() (model.Session, error) {
	path, err := configPath(sessionFile)
	if err != nil {
		return model.Session{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Session{}, nil
		}
		return model.Session{}, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return model.Session{}, errors.New("invalid session format")
	}
	return session, nil
}

func SaveSession(session model.Session) error {
	if !session.LoggedIn() {
		return errors.New("session user id is required")
	}
	path, err := configPath(sessionFile)
	if err != nil {
		return err
	}
	return writeJSON(path, session, 0o600)
}

func ClearSession() error {
	path, err := configPath(sessionFile)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func LoadRecentTrains() ([]RecentTrain, error) {
	path, err := configPath(recentFile)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var history trainHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, errors.New("invalid train history format")
	}
	return history.Trains, nil
}

// RememberTrain puts train at the front of the recent list, dropping older duplicates.
func RememberTrain(train model.Train) error {
	if train.Id == 0 {
		return errors.New("train id is required")
	}
	history, _ := LoadRecentTrains()
	next := []RecentTrain{{
		ID:               train.Id,
		Name:             strings.TrimSpace(train.Name),
		DepartureStation: strings.TrimSpace(train.DepartureStation),
		ArrivalStation:   strings.TrimSpace(train.ArrivalStation),
	}}

	for _, existing := range history {
		if existing.ID == train.Id {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentTrains {
			break
		}
	}

	path, err := configPath(recentFile)
	if err != nil {
		return err
	}
	return writeJSON(path, trainHistory{Trains: next}, 0o644)
}

func writeJSON(path string, value any, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, perm)
}

// ConfigDir is where the session, history and optional ktx.yaml live.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir), nil
}

// CacheDir is where the log file goes by default.
func CacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir), nil
}

func configPath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
