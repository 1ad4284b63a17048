package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"tasklist/internal/attachment"
	"tasklist/internal/config"
	"tasklist/internal/model"
	"tasklist/internal/notify"
	"tasklist/internal/query"
	"tasklist/internal/repository"
	"tasklist/internal/service"
	"tasklist/internal/settings"
)

const dueTimeLayout = "2006-01-02 15:04"

type app struct {
	cfg      config.Config
	db       *gorm.DB
	tasks    *repository.TaskRepository
	store    *attachment.Store
	settings *settings.Store
	alarms   *service.AlarmService
	reminder *service.ReminderService
	taskSvc  *service.TaskService
	log      *logrus.Logger
}

func newApp(log *logrus.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	store, err := attachment.NewStore(cfg.AttachmentsDir(), log)
	if err != nil {
		return nil, err
	}

	taskRepo := repository.NewTaskRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	settingsStore := settings.NewStore(cfg.SettingsPath())

	notifiers := []notify.Notifier{notify.NewDesktopNotifier()}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, tg)
	}
	dispatcher := notify.NewDispatcher(log, notifiers...)

	alarms := service.NewAlarmService(time.Local)
	reminderSvc := service.NewReminderService(reminderRepo, alarms, dispatcher.Dispatch, log)
	taskSvc := service.NewTaskService(taskRepo, reminderSvc, settingsStore, log)

	return &app{
		cfg:      cfg,
		db:       db,
		tasks:    taskRepo,
		store:    store,
		settings: settingsStore,
		alarms:   alarms,
		reminder: reminderSvc,
		taskSvc:  taskSvc,
		log:      log,
	}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	a, err := newApp(log)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer a.close()

	root := &cobra.Command{
		Use:           "tasklist",
		Short:         "Personal task tracker with scheduled reminders",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.showCmd(),
		a.editCmd(),
		a.completionCmd("done", true),
		a.completionCmd("undone", false),
		a.deleteCmd(),
		a.categoriesCmd(),
		a.sweepCmd(),
		a.settingsCmd(),
		a.openCmd(),
		a.daemonCmd(),
	)

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func (a *app) addCmd() *cobra.Command {
	var (
		title, desc, due, category string
		notifyOn                   bool
		attachPaths                []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			dueTime, err := time.ParseInLocation(dueTimeLayout, due, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --due %q, expected %q", due, dueTimeLayout)
			}

			attachments, err := a.materializeAll(attachPaths, nil)
			if err != nil {
				return err
			}

			task, err := a.taskSvc.Create(cmd.Context(), service.TaskInput{
				Title:               title,
				Description:         desc,
				Category:            category,
				DueTime:             dueTime,
				NotificationEnabled: notifyOn,
				Attachments:         attachments,
			})
			if errors.Is(err, service.ErrPermissionDenied) {
				a.log.Warnf("task %d saved, but exact alarms are not permitted; enable them in system settings", task.ID)
				err = nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("created task %d\n", task.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "task title (required)")
	cmd.Flags().StringVar(&desc, "description", "", "task description")
	cmd.Flags().StringVar(&due, "due", "", "due time, "+dueTimeLayout+" (required)")
	cmd.Flags().StringVar(&category, "category", "", "free-text category")
	cmd.Flags().BoolVar(&notifyOn, "notify", false, "schedule a reminder before the due time")
	cmd.Flags().StringSliceVar(&attachPaths, "attach", nil, "file to attach (repeatable)")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("due")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var (
		hideCompleted bool
		category      string
		search        string
		sortRaw       string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, filtered and sorted",
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := a.settings.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("hide-completed") {
				hideCompleted = prefs.HideCompleted
			}
			if !cmd.Flags().Changed("category") {
				category = prefs.SelectedCategory
			}
			if !cmd.Flags().Changed("sort") {
				sortRaw = prefs.SortOption
			}
			sortOpt, err := query.ParseSortOption(sortRaw)
			if err != nil {
				return err
			}

			tasks, err := a.taskSvc.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, task := range query.Apply(tasks, query.Filters{
				HideCompleted: hideCompleted,
				Category:      category,
				Search:        search,
				Sort:          sortOpt,
			}) {
				printTaskLine(task)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&hideCompleted, "hide-completed", false, "hide completed tasks")
	cmd.Flags().StringVar(&category, "category", query.CategoryAll, "only this category")
	cmd.Flags().StringVar(&search, "search", "", "match title or description, case-insensitive")
	cmd.Flags().StringVar(&sortRaw, "sort", string(query.SortDateAsc), "DATE_ASC|DATE_DESC|TITLE_ASC|TITLE_DESC")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task with its attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, err := a.taskSvc.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			printTaskDetails(*task)
			return nil
		},
	}
}

func (a *app) editCmd() *cobra.Command {
	var (
		title, desc, due, category string
		notifyOn                   bool
		attachPaths                []string
		clearAttachments           bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task (full replace of the given fields)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, err := a.taskSvc.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("title") {
				task.Title = title
			}
			if cmd.Flags().Changed("description") {
				task.Description = desc
			}
			if cmd.Flags().Changed("category") {
				task.Category = category
			}
			if cmd.Flags().Changed("notify") {
				task.NotificationEnabled = notifyOn
			}
			if cmd.Flags().Changed("due") {
				dueTime, err := time.ParseInLocation(dueTimeLayout, due, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --due %q, expected %q", due, dueTimeLayout)
				}
				task.DueTime = dueTime
			}
			if clearAttachments {
				task.Attachments = nil
			}
			task.Attachments, err = a.materializeAll(attachPaths, task.Attachments)
			if err != nil {
				return err
			}

			if err := a.taskSvc.Update(cmd.Context(), task); err != nil {
				if errors.Is(err, service.ErrPermissionDenied) {
					a.log.Warnf("task %d saved, but exact alarms are not permitted; enable them in system settings", task.ID)
					return nil
				}
				return err
			}
			fmt.Printf("updated task %d\n", task.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&desc, "description", "", "new description")
	cmd.Flags().StringVar(&due, "due", "", "new due time, "+dueTimeLayout)
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().BoolVar(&notifyOn, "notify", false, "enable or disable the reminder")
	cmd.Flags().StringSliceVar(&attachPaths, "attach", nil, "file to attach (repeatable)")
	cmd.Flags().BoolVar(&clearAttachments, "clear-attachments", false, "drop all attachments first")
	return cmd
}

func (a *app) completionCmd(use string, completed bool) *cobra.Command {
	short := "Mark a task completed"
	if !completed {
		short = "Mark a task not completed"
	}
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.taskSvc.SetCompletion(cmd.Context(), id, completed)
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task, its attachments and its reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.taskSvc.Delete(cmd.Context(), id)
		},
	}
}

func (a *app) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the distinct categories in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.taskSvc.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range query.Categories(tasks) {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func (a *app) sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete attachment files no task references anymore",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.taskSvc.List(cmd.Context())
			if err != nil {
				return err
			}
			return a.store.SweepUnused(tasks)
		},
	}
}

func (a *app) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or change preferences",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := a.settings.Load()
			if err != nil {
				return err
			}
			fmt.Printf("notification_lead_minutes: %d\n", prefs.NotificationLeadMinutes)
			fmt.Printf("hide_completed: %t\n", prefs.HideCompleted)
			fmt.Printf("sort_option: %s\n", prefs.SortOption)
			fmt.Printf("selected_category: %s\n", prefs.SelectedCategory)
			return nil
		},
	})

	var (
		lead     int
		hide     bool
		sortRaw  string
		category string
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Change settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := a.settings.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("lead-minutes") {
				prefs.NotificationLeadMinutes = lead
			}
			if cmd.Flags().Changed("hide-completed") {
				prefs.HideCompleted = hide
			}
			if cmd.Flags().Changed("sort") {
				if _, err := query.ParseSortOption(sortRaw); err != nil {
					return err
				}
				prefs.SortOption = sortRaw
			}
			if cmd.Flags().Changed("category") {
				prefs.SelectedCategory = category
			}
			return a.settings.Save(prefs)
		},
	}
	set.Flags().IntVar(&lead, "lead-minutes", 10, "reminder lead time in minutes")
	set.Flags().BoolVar(&hide, "hide-completed", false, "hide completed tasks by default")
	set.Flags().StringVar(&sortRaw, "sort", string(query.SortDateAsc), "default sort option")
	set.Flags().StringVar(&category, "category", query.CategoryAll, "default category filter")
	cmd.AddCommand(set)

	return cmd
}

func (a *app) openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <link|id>",
		Short: "Resolve a notification deep link to its task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := notify.ParseDeepLink(args[0])
			if err != nil {
				return err
			}
			task, err := notify.Resolve(cmd.Context(), a.tasks, link)
			if err != nil {
				return err
			}
			if task == nil {
				fmt.Println("task no longer exists")
				return nil
			}
			printTaskDetails(*task)
			return nil
		},
	}
}

func (a *app) daemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the reminder loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := a.reminder.RestorePending(ctx); err != nil {
				return err
			}
			a.alarms.Start()
			defer a.alarms.Stop()

			a.log.Info("reminder daemon started")
			<-ctx.Done()
			a.log.Info("shutdown complete")
			return nil
		},
	}
}

// materializeAll copies each source into the attachment store and appends
// the result to existing, skipping references the task already carries.
func (a *app) materializeAll(paths []string, existing []model.Attachment) ([]model.Attachment, error) {
	out := existing
	for _, src := range paths {
		name := filepath.Base(src)
		ref, err := a.store.Materialize(src, name)
		if err != nil {
			return nil, err
		}
		duplicate := false
		for _, att := range out {
			if att.Reference == ref {
				duplicate = true
				break
			}
		}
		if !duplicate {
			out = append(out, model.Attachment{Name: name, Reference: ref})
		}
	}
	return out, nil
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return uint(id), nil
}

func printTaskLine(task model.Task) {
	state := " "
	if task.IsCompleted {
		state = "x"
	}
	line := fmt.Sprintf("%4d [%s] %s  due %s", task.ID, state, task.Title, task.DueTime.Format(dueTimeLayout))
	if task.Category != "" {
		line += "  (" + task.Category + ")"
	}
	if len(task.Attachments) > 0 {
		line += fmt.Sprintf("  [%d attachments]", len(task.Attachments))
	}
	fmt.Println(line)
}

func printTaskDetails(task model.Task) {
	printTaskLine(task)
	if task.Description != "" {
		fmt.Println("  " + task.Description)
	}
	fmt.Printf("  created %s, notifications %t\n", task.CreationTime.Format(dueTimeLayout), task.NotificationEnabled)
	for _, att := range task.Attachments {
		fmt.Printf("  attachment: %s (%s)\n", att.Name, att.Reference)
	}
}
