// Package config provides configuration loading and validation for TugasBot.
// Values come from a YAML file, BOT_* environment variables, and defaults,
// in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/viper"
)

// Config holds all application configuration parameters.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds Telegram connection settings. BotInfo is populated at
// startup from GetMe and is not read from the config file.
type TelegramConfig struct {
	Token       string        `mapstructure:"token" validate:"required"`
	SendTimeout time.Duration `mapstructure:"send_timeout" validate:"min=1s,max=5m"`

	BotInfo *models.User `mapstructure:"-"`
}

// DatabaseConfig holds SQLite database settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig holds the scheduler timezone and per-task schedules.
// Task keys must match the names registered in the task registry.
type SchedulerConfig struct {
	Timezone string                `mapstructure:"timezone" validate:"required"`
	Tasks    map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig defines the schedule for a single background task.
type TaskConfig struct {
	Schedule string `mapstructure:"schedule"`
	Enabled  bool   `mapstructure:"enabled"`
}

// MessagesConfig holds every user-visible message template. Templates with a
// %s/%d verb are filled with fmt.Sprintf by the handlers.
type MessagesConfig struct {
	Welcome          string `mapstructure:"welcome"`
	GeneralError     string `mapstructure:"general_error"`
	ListHeader       string `mapstructure:"list_header"`
	ListEntry        string `mapstructure:"list_entry"`
	ListEmpty        string `mapstructure:"list_empty"`
	CompletePrompt   string `mapstructure:"complete_prompt"`
	CompleteEmpty    string `mapstructure:"complete_empty"`
	CompleteConfirm  string `mapstructure:"complete_confirm"`
	CompleteNotFound string `mapstructure:"complete_not_found"`
	IntakeAskName    string `mapstructure:"intake_ask_name"`
	IntakeAskDate    string `mapstructure:"intake_ask_date"`
	IntakeBadDate    string `mapstructure:"intake_bad_date"`
	IntakeSaved      string `mapstructure:"intake_saved"`
	IntakeCancelled  string `mapstructure:"intake_cancelled"`
	Reminder         string `mapstructure:"reminder"`
}

// LoadConfig reads the configuration file at path (optional), applies BOT_*
// environment overrides and defaults, and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The token has no default, so it must be bound explicitly to be visible
	// to Unmarshal when neither the file nor a default carries the key.
	if err := v.BindEnv("telegram.token"); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing config file is fine, env and defaults still apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := time.LoadLocation(cfg.Scheduler.Timezone); err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Scheduler.Timezone, err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", false)

	v.SetDefault("telegram.send_timeout", 30*time.Second)

	v.SetDefault("database.path", "tasks.db")

	// Daily reminder at 08:00 WIB (UTC+7), as a five-field cron expression.
	v.SetDefault("scheduler.timezone", "Asia/Jakarta")
	v.SetDefault("scheduler.tasks", map[string]TaskConfig{
		"daily_reminder": {Schedule: "0 8 * * *", Enabled: true},
	})

	v.SetDefault("messages.welcome",
		"Halo!\n\nSaya adalah bot pengingat tugas. Saya akan membantumu mengingat deadline.\n\n"+
			"Perintah yang tersedia:\n"+
			"/tugasbaru - Menambah tugas baru\n"+
			"/listtugas - Melihat daftar tugas yang belum selesai\n"+
			"/selesai - Menandai tugas sebagai selesai\n")
	v.SetDefault("messages.general_error", "Maaf, terjadi kesalahan. Silakan coba lagi.")

	v.SetDefault("messages.list_header", "Daftar Tugas Anda yang Belum Selesai:\n\n")
	v.SetDefault("messages.list_entry", "*%d. %s*\n   Deadline: %s (Sisa %d hari)\n")
	v.SetDefault("messages.list_empty", "Hore! Tidak ada tugas yang belum selesai.")

	v.SetDefault("messages.complete_prompt", "Pilih tugas yang sudah selesai:")
	v.SetDefault("messages.complete_empty", "Tidak ada tugas yang bisa ditandai selesai.")
	v.SetDefault("messages.complete_confirm", "Mantap! Tugas '%s' telah ditandai selesai.")
	v.SetDefault("messages.complete_not_found", "Maaf, tugas tidak ditemukan.")

	v.SetDefault("messages.intake_ask_name",
		"Oke, mari tambahkan tugas baru.\nApa nama tugasnya? (Ketik /cancel untuk batal)")
	v.SetDefault("messages.intake_ask_date",
		"Nama tugas: *%s*\n\nKapan deadlinenya? (Format: *YYYY-MM-DD*, contoh: 2025-12-31)\n(Ketik /cancel untuk batal)")
	v.SetDefault("messages.intake_bad_date",
		"Format tanggal salah. Harap gunakan *YYYY-MM-DD*.\nKapan deadlinenya?")
	v.SetDefault("messages.intake_saved",
		"Berhasil! Tugas '%s' dengan deadline %s telah disimpan.")
	v.SetDefault("messages.intake_cancelled", "Penambahan tugas baru dibatalkan.")

	v.SetDefault("messages.reminder",
		"🔔 *Pengingat Tugas!* 🔔\n\nTugas: *%s*\nDeadline: *%s*\nSisa Hari: *%d hari lagi!*\n\n"+
			"Jangan lupa dikerjakan ya! Semangat! 💪")
}
