package cli

import (
	"time"

	estimationServices "github.com/chivvyhq/chivvy/internal/estimation/application/services"
	"github.com/chivvyhq/chivvy/internal/messages"
	pickerServices "github.com/chivvyhq/chivvy/internal/picker/application/services"
	"github.com/chivvyhq/chivvy/internal/profiles/application/settings"
	"github.com/chivvyhq/chivvy/internal/tasks/application/commands"
	"github.com/chivvyhq/chivvy/internal/tasks/application/queries"
	"github.com/google/uuid"
)

// App holds the CLI application dependencies.
type App struct {
	// Task Command Handlers
	CreateTaskHandler   *commands.CreateTaskHandler
	UpdateTaskHandler   *commands.UpdateTaskHandler
	CompleteTaskHandler *commands.CompleteTaskHandler
	PostponeTaskHandler *commands.PostponeTaskHandler
	DeleteTaskHandler   *commands.DeleteTaskHandler

	// Task Query Handlers
	ListTasksHandler *queries.ListTasksHandler
	GetTaskHandler   *queries.GetTaskHandler

	// Services
	PickerEngine    *pickerServices.Engine
	SettingsService *settings.Service
	MessageSelector *messages.Selector
	Calibration     *estimationServices.CalibrationWindow

	// Focus session polling cadence
	FocusPollInterval time.Duration

	// Current user (configured per environment)
	CurrentUserID uuid.UUID
}

// NewApp creates the CLI application with all handlers.
func NewApp(
	createTask *commands.CreateTaskHandler,
	updateTask *commands.UpdateTaskHandler,
	completeTask *commands.CompleteTaskHandler,
	postponeTask *commands.PostponeTaskHandler,
	deleteTask *commands.DeleteTaskHandler,
	listTasks *queries.ListTasksHandler,
	getTask *queries.GetTaskHandler,
	picker *pickerServices.Engine,
	settingsService *settings.Service,
	selector *messages.Selector,
	calibration *estimationServices.CalibrationWindow,
) *App {
	return &App{
		CreateTaskHandler:   createTask,
		UpdateTaskHandler:   updateTask,
		CompleteTaskHandler: completeTask,
		PostponeTaskHandler: postponeTask,
		DeleteTaskHandler:   deleteTask,
		ListTasksHandler:    listTasks,
		GetTaskHandler:      getTask,
		PickerEngine:        picker,
		SettingsService:     settingsService,
		MessageSelector:     selector,
		Calibration:         calibration,
		FocusPollInterval:   30 * time.Second,
	}
}

// SetCurrentUserID sets the user all commands act as.
func (a *App) SetCurrentUserID(id uuid.UUID) {
	a.CurrentUserID = id
}

// SetFocusPollInterval overrides the focus session polling cadence.
func (a *App) SetFocusPollInterval(d time.Duration) {
	if d > 0 {
		a.FocusPollInterval = d
	}
}

var cliApp *App

// SetApp sets the global CLI app instance.
func SetApp(a *App) {
	cliApp = a
}

// GetApp returns the global CLI app instance.
func GetApp() *App {
	return cliApp
}
