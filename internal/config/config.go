package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "Go Birthday Bot"
	AppID          = "com.github.tartampluch.go-birthdaybot"
	KeyringService = "com.github.tartampluch.go-birthdaybot"
	KeyringUser    = "bot-token"
	LogFileName    = "bot.log"

	// EnvPrefix namespaces every environment variable read by the settings
	// loader (e.g. BIRTHDAYBOT_TOKEN, BIRTHDAYBOT_GUILD_ID).
	EnvPrefix = "BIRTHDAYBOT_"

	ConfigPathEnvVar = "BIRTHDAYBOT_CONFIG"
)

// DefaultConfigPaths lists where an optional settings file is searched,
// first match wins.
var DefaultConfigPaths = []string{
	"birthdaybot.yaml",
	"birthdaybot.yml",
	"/etc/go-birthdaybot/config.yaml",
}

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// All persisted documents contain user identifiers and stay private.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Persisted Document Files
// -----------------------------------------------------------------------------

const (
	FileBirthdays = "birthdays.json"
	FileCooldowns = "cooldowns.json"
	FileGreetings = "greetings.json"
	FileSlots     = "display_slots.json"

	// TempFileSuffix is appended to the target name while a document is
	// written out, before the atomic rename.
	TempFileSuffix = ".tmp"
)

// -----------------------------------------------------------------------------
// Defaults & Business Logic
// -----------------------------------------------------------------------------

const (
	// DefaultTimezone is assumed when a submission leaves the zone empty.
	DefaultTimezone = "UTC"

	// DefaultCooldown is the minimum wait between two mutations of the
	// same person's record.
	DefaultCooldown = 12 * time.Hour

	// DefaultGreetingTTL caps the lifetime of a greeting message
	// independently of role revocation.
	DefaultGreetingTTL = 24 * time.Hour

	// DefaultDailyInterval drives the role/greeting evaluation pass.
	DefaultDailyInterval = 24 * time.Hour

	// DefaultSweepInterval drives the greeting expiry sweeper.
	DefaultSweepInterval = 10 * time.Minute

	DefaultRoleName = "Birthday"
	DefaultLanguage = "en"
	DefaultDataDir  = "data"
	DefaultFeedPort = "18080"

	// MonthsPerYear sizes the display slot array: one pinned message per
	// calendar month.
	MonthsPerYear = 12

	// InteractiveSlotMonth is the single slot that carries the
	// submit/change affordances (the last of the chronological listing).
	InteractiveSlotMonth = 12

	// DatePattern is the strict DD-MM submission format, zero-padded.
	DatePattern = `^(0[1-9]|[12][0-9]|3[01])-(0[1-9]|1[0-2])$`

	// DateInputLayout renders a record back into submission form.
	DateInputLayout = "%02d-%02d"
)

// DaysInMonth is the calendar validity table for submissions.
// February is 29: a 29-02 record is always accepted and celebrated on
// March 1st in non-leap years.
var DaysInMonth = [13]int{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// -----------------------------------------------------------------------------
// Supervision & Scheduling
// -----------------------------------------------------------------------------

const (
	SupervisorName    = "go-birthdaybot"
	ShutdownTimeout   = 10 * time.Second
	SupervisorDecay   = 30.0
	SupervisorFails   = 5.0
	SupervisorBackoff = 15 * time.Second
)

// -----------------------------------------------------------------------------
// Calendar Feed (iCal)
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Birthday Bot//Engine//EN"
	ICalCalName = "Birthdays"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "gobirthdaybot"

	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"
	PropRefresh    = "REFRESH-INTERVAL"

	DefaultICalRefresh = 24 * time.Hour

	FormatFeedUID = "%s-%d@%s"

	// StubVCalendar is the minimal valid iCalendar object served before the
	// first generation pass or when no records exist.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Feed Server (HTTP)
// -----------------------------------------------------------------------------

const (
	LocalhostBindAddr  = "127.0.0.1"
	AddrSeparator      = ":"
	RouteRoot          = "/"
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"

	HeaderContentType  = "Content-Type"
	HeaderCacheControl = "Cache-Control"
	HeaderETag         = "ETag"
	HeaderLastModified = "Last-Modified"
	HeaderRetryAfter   = "Retry-After"
	HeaderAllow        = "Allow"
	HeaderXContentType = "X-Content-Type-Options"
	HeaderIfNoneMatch  = "If-None-Match"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a hex digest argument.
	FormatETag = `"%s"`

	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"

	ErrPortRequired   = "feed server port is required"
	ErrServerStartup  = "feed server startup failed"
	ErrServerShutdown = "feed server shutdown failed"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyGreeting       = "greeting"         // Requires Mention
	TKeyListTitle      = "list_title"       // Requires Month
	TKeyListEmpty      = "list_empty_month" // Placeholder for months without entries
	TKeyListEntry      = "list_entry"       // Requires Date, Name
	TKeyListCTA        = "list_call_to_action"
	TKeyFeedSummary    = "feed_summary" // Requires Name
	TKeyBtnSubmit      = "btn_submit"
	TKeyBtnChange      = "btn_change"
	TKeyModalTitle     = "modal_title"
	TKeyModalDateLabel = "modal_date_label"
	TKeyModalDateHint  = "modal_date_hint"
	TKeyModalZoneLabel = "modal_zone_label"
	TKeyModalZoneHint  = "modal_zone_hint"
	TKeyReplySubmitted = "reply_submitted" // Requires Date
	TKeyReplyChanged   = "reply_changed"   // Requires Date
	TKeyReplyRefreshed = "reply_refreshed"
	TKeyErrFormat      = "err_format"
	TKeyErrDate        = "err_date"
	TKeyErrTimezone    = "err_timezone" // Requires Zone
	TKeyErrExists      = "err_exists"
	TKeyErrNoRecord    = "err_no_record"
	TKeyErrCooldown    = "err_cooldown" // Requires Minutes
	TKeyErrInternal    = "err_internal"

	TKeyMonthPrefix = "month_" // month_1 .. month_12
)

// FallbackName stands in when a member lookup fails during rendering.
const FallbackName = "User %s"

// -----------------------------------------------------------------------------
// Interaction Identifiers
// -----------------------------------------------------------------------------

const (
	CmdBirthday     = "birthday"
	CmdBirthdayDesc = "Submit your birthday"
	CmdChange       = "birthday-change"
	CmdChangeDesc   = "Change your submitted birthday"
	CmdRefresh      = "refresh"
	CmdRefreshDesc  = "Refresh the birthday list"

	CustomIDSubmitButton = "birthday_submit_btn"
	CustomIDChangeButton = "birthday_change_btn"
	CustomIDSubmitModal  = "birthday_submit_modal"
	CustomIDChangeModal  = "birthday_change_modal"
	CustomIDDateField    = "birthday_date"
	CustomIDZoneField    = "birthday_zone"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrTokenMissing    = "startup error: bot token is not configured"
	ErrSettingsLoad    = "failed to load settings"
	ErrSettingsInvalid = "invalid settings"
	ErrStoreLoad       = "failed to load persisted document"
	ErrStoreDecode     = "failed to decode persisted document"
	ErrStoreEncode     = "failed to encode document"
	ErrStoreWrite      = "failed to write document"
	ErrStoreRename     = "failed to replace document"
	ErrDataDir         = "could not create data directory"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrLogFile         = "failed to open log file"
	ErrAppFailed       = "application failed unexpectedly"
	ErrSessionOpen     = "failed to open platform session"
	ErrCommandSync     = "failed to register commands"
	ErrGuildNotFound   = "guild not found"
	ErrChannelNotFound = "channel not found"
	ErrRoleNotFound    = "role not found"
	ErrListMembers     = "failed to list group members"
	ErrFeedEncode      = "failed to encode calendar feed"
	ErrWriteResp       = "failed to write response body"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting    = "Starting application"
	MsgAppStop        = "Application stopped gracefully"
	MsgCtxCancel      = "Context cancelled, shutting down"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgSessionReady   = "Platform session ready"
	MsgCommandsSynced = "Commands registered"
	MsgDailyStart     = "Daily evaluation started"
	MsgDailyDone      = "Daily evaluation finished"
	MsgRoleGranted    = "Birthday role granted"
	MsgRoleRevoked    = "Birthday role revoked"
	MsgGreetingSent   = "Greeting posted"
	MsgGreetingGone   = "Greeting removed"
	MsgGreetingStale  = "Expired greeting swept"
	MsgSweepDone      = "Greeting sweep finished"
	MsgRecordPurged   = "Record purged for departed member"
	MsgReconcileStart = "Display reconciliation started"
	MsgReconcileDone  = "Display reconciliation finished"
	MsgSlotCreated    = "Display slot created"
	MsgSlotRecreated  = "Display slot recreated after remote loss"
	MsgFeedUpdated    = "Calendar feed updated"
	MsgServerListen   = "Feed server listening"
	MsgServerStop     = "Shutting down feed server..."
	MsgCacheUpdated   = "Feed cache updated"
	MsgMemberSkipped  = "Member evaluation failed, continuing"
	MsgItemSkipped    = "Item failed, continuing"
	MsgRecordCreated  = "Birthday record created"
	MsgRecordChanged  = "Birthday record changed"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgWorkerStart    = "Background worker started"
	MsgWorkerStop     = "Worker stopping due to context cancellation"
	MsgTokenKeyring   = "Token resolved from OS keyring"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyPerson    = "person_id"
	LogKeyMember    = "member_id"
	LogKeyMessage   = "message_id"
	LogKeyMonth     = "month"
	LogKeyDate      = "date"
	LogKeyZone      = "timezone"
	LogKeyGuild     = "guild_id"
	LogKeyChannel   = "channel_id"
	LogKeyRole      = "role"
	LogKeyKind      = "kind"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyCount     = "count"
	LogKeyRemaining = "remaining"
	LogKeyDuration  = "duration_ms"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyStats     = "stats"
	LogKeyGranted   = "granted"
	LogKeyRevoked   = "revoked"
	LogKeySwept     = "swept"
	LogKeyEvaluated = "evaluated"
	LogKeyAction    = "action"
	LogKeyInterval  = "interval"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain      = "main"
	CompConfig    = "config"
	CompStore     = "store"
	CompRegistry  = "registry"
	CompDisplay   = "display"
	CompEngine    = "engine"
	CompSweeper   = "sweeper"
	CompPlatform  = "platform"
	CompScheduler = "scheduler"
	CompServer    = "server"
	CompUI        = "ui"
	CompI18n      = "i18n"
)
