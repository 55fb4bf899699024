package db

import (
	"classsync-backend/internal/classsync"
	"context"
	"database/sql"
	"fmt"
	"strconv"
)

const (
	settingRefreshInterval = "refresh_interval_hours"
	settingWebClassRate    = "web_class_rate"
	settingWebCampusRate   = "web_campus_rate"
	settingUsername        = "username"
	settingPassword        = "password"
	settingSaveCredentials = "save_credentials"
)

const DefaultRefreshIntervalHours = 6

// Settings is a key value implementation of classsync.Settings.
type Settings struct {
	qry    *Queries
	makeTx MakeTx
}

var _ classsync.Settings = Settings{}

func NewSettings(data *sql.DB) Settings {
	return Settings{
		qry:    New(data),
		makeTx: NewMakeTx(data),
	}
}

func (s Settings) getFloat(ctx context.Context, key string) (float64, error) {
	value, ok, err := s.qry.GetSetting(ctx, key)
	if err != nil || !ok {
		return 0, err
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("setting %s: %w", key, err)
	}
	return parsed, nil
}

func (s Settings) GetRefreshIntervalHours(ctx context.Context) (int, error) {
	value, ok, err := s.qry.GetSetting(ctx, settingRefreshInterval)
	if err != nil {
		return 0, err
	}
	if !ok {
		return DefaultRefreshIntervalHours, nil
	}
	hours, err := strconv.Atoi(value)
	if err != nil || hours <= 0 {
		return DefaultRefreshIntervalHours, nil
	}
	return hours, nil
}

func (s Settings) SetRefreshIntervalHours(ctx context.Context, hours int) error {
	if hours <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %d", hours)
	}
	return s.qry.SetSetting(ctx, settingRefreshInterval, strconv.Itoa(hours))
}

func (s Settings) SetWebAttendanceRates(ctx context.Context, classRate, campusRate float64) error {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		return err
	}
	defer discard()

	err = tx.SetSetting(ctx, settingWebClassRate, strconv.FormatFloat(classRate, 'f', -1, 64))
	if err != nil {
		return err
	}
	err = tx.SetSetting(ctx, settingWebCampusRate, strconv.FormatFloat(campusRate, 'f', -1, 64))
	if err != nil {
		return err
	}
	return commit()
}

func (s Settings) GetWebAttendanceRates(ctx context.Context) (float64, float64, error) {
	classRate, err := s.getFloat(ctx, settingWebClassRate)
	if err != nil {
		return 0, 0, err
	}
	campusRate, err := s.getFloat(ctx, settingWebCampusRate)
	if err != nil {
		return 0, 0, err
	}
	return classRate, campusRate, nil
}

func (s Settings) GetCredentials(ctx context.Context) (classsync.Credentials, error) {
	var creds classsync.Credentials
	var err error

	creds.Username, _, err = s.qry.GetSetting(ctx, settingUsername)
	if err != nil {
		return classsync.Credentials{}, err
	}
	creds.Password, _, err = s.qry.GetSetting(ctx, settingPassword)
	if err != nil {
		return classsync.Credentials{}, err
	}
	save, _, err := s.qry.GetSetting(ctx, settingSaveCredentials)
	if err != nil {
		return classsync.Credentials{}, err
	}
	creds.Save = save == "true"
	return creds, nil
}

// SaveCredentials always keeps the username, the password is only kept when Save is set.
func (s Settings) SaveCredentials(ctx context.Context, creds classsync.Credentials) error {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		return err
	}
	defer discard()

	err = tx.SetSetting(ctx, settingUsername, creds.Username)
	if err != nil {
		return err
	}
	if creds.Save {
		err = tx.SetSetting(ctx, settingPassword, creds.Password)
	} else {
		err = tx.DeleteSetting(ctx, settingPassword)
	}
	if err != nil {
		return err
	}
	err = tx.SetSetting(ctx, settingSaveCredentials, strconv.FormatBool(creds.Save))
	if err != nil {
		return err
	}
	return commit()
}

func (s Settings) ClearCredentials(ctx context.Context) error {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		return err
	}
	defer discard()

	for _, key := range []string{settingUsername, settingPassword, settingSaveCredentials} {
		if err := tx.DeleteSetting(ctx, key); err != nil {
			return err
		}
	}
	return commit()
}
