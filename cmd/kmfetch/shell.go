package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/nyxaria/kmfetch/internal/rpcbridge"
	"github.com/nyxaria/kmfetch/internal/ui"
	"github.com/nyxaria/kmfetch/internal/validator"
	"github.com/nyxaria/kmfetch/pkg/models"
)

// commandCatalogue lists every handler the local shell and (for the
// safelisted subset) the RPC bridge can dispatch to, per §6 "the command
// catalogue is the handler map".
var commandCatalogue = []string{
	"help", "list", "tasks", "download_artist", "update_posts_basic",
	"update_posts_full", "cancel_all", "validate", "migrate",
	"add_artist", "remove_artist", "report",
}

// handle dispatches one parsed command against the running app, returning
// the text a shell prints. Unknown keys in params are tolerated, never a
// hard failure: commands that take parameters prepend a warning line
// (per §6), and help, tasks and cancel_all ignore params entirely.
func (a *app) handle(command string, params map[string]string) (string, error) {
	switch command {
	case "help":
		return strings.Join(commandCatalogue, ", "), nil
	case "list":
		return a.cmdList(params)
	case "tasks":
		return a.cmdTasks()
	case "download_artist":
		return a.cmdDownloadArtist(params)
	case "update_posts_basic":
		return a.cmdUpdatePostsBasic(params)
	case "update_posts_full":
		return a.cmdUpdatePostsFull(params)
	case "cancel_all":
		a.scheduler.CancelAll()
		return "all queued and in-flight tasks cancelled", nil
	case "validate":
		return a.cmdValidate(params)
	case "migrate":
		return a.cmdMigrate(params)
	case "add_artist":
		return a.cmdAddArtist(params)
	case "remove_artist":
		return a.cmdRemoveArtist(params)
	case "report":
		return a.cmdReport(params)
	default:
		return "", fmt.Errorf("unknown command: %s", command)
	}
}

func knownKeysWarning(command string, params map[string]string, known ...string) string {
	allowed := make(map[string]bool, len(known))
	for _, k := range known {
		allowed[k] = true
	}
	var unknown []string
	for k := range params {
		if !allowed[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return ""
	}
	sort.Strings(unknown)
	return fmt.Sprintf("warning: command %q doesn't support parameter(s): %s\n", command, strings.Join(unknown, ", "))
}

func (a *app) cmdList(params map[string]string) (string, error) {
	warn := knownKeysWarning("list", params)
	artists, err := a.storage.ListArtists()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(warn)
	for _, ar := range artists {
		status := "active"
		if ar.Ignore {
			status = "ignored"
		}
		fmt.Fprintf(&b, "%s\t%s/%s\t%s\t%s\n", ar.ID, ar.Service, ar.Name, status, lastDateOf(ar))
	}
	if len(artists) == 0 {
		b.WriteString("(no artists)\n")
	}
	return b.String(), nil
}

func lastDateOf(a models.Artist) string {
	if a.LastDate == nil {
		return "never"
	}
	return a.LastDate.Format("2006-01-02")
}

func (a *app) cmdTasks() (string, error) {
	status := a.scheduler.Status()
	var b strings.Builder
	fmt.Fprintf(&b, "queued: %d, running: %d\n", len(status.Queued), len(status.Running))
	for _, t := range status.Running {
		started := "just now"
		if t.Started != nil {
			started = t.Started.Format(time.Kitchen)
		}
		fmt.Fprintf(&b, "  [running] %s %s (started %s)\n", t.ID, t.ArtistID, started)
	}
	for _, t := range status.Queued {
		fmt.Fprintf(&b, "  [queued]  %s %s\n", t.ID, t.ArtistID)
	}
	return b.String(), nil
}

func (a *app) cmdDownloadArtist(params map[string]string) (string, error) {
	warn := knownKeysWarning("download_artist", params, "id", "from", "until")
	id := params["id"]
	if id == "" {
		return "", fmt.Errorf("download_artist requires id=<artist_id>")
	}
	fromDate := parseDateParam(params["from"])
	untilDate := parseDateParam(params["until"])
	taskID, queued := a.scheduler.QueueManual(id, fromDate, untilDate)
	if !queued {
		return warn + "already queued", nil
	}
	return warn + fmt.Sprintf("queued as task %s", taskID), nil
}

func parseDateParam(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

func (a *app) cmdUpdatePostsBasic(params map[string]string) (string, error) {
	warn := knownKeysWarning("update_posts_basic", params, "id")
	artist, ok, err := a.storage.GetArtist(params["id"])
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("unknown artist id %q", params["id"])
	}
	hasNew, err := a.downloader.UpdatePostsBasic(context.Background(), artist)
	if err != nil {
		return "", err
	}
	return warn + fmt.Sprintf("has_new=%v", hasNew), nil
}

func (a *app) cmdUpdatePostsFull(params map[string]string) (string, error) {
	warn := knownKeysWarning("update_posts_full", params, "id")
	artist, ok, err := a.storage.GetArtist(params["id"])
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("unknown artist id %q", params["id"])
	}
	n, err := a.downloader.UpdatePostsFull(context.Background(), artist)
	if err != nil {
		return "", err
	}
	return warn + fmt.Sprintf("%d posts with file changes found", n), nil
}

func (a *app) cmdAddArtist(params map[string]string) (string, error) {
	warn := knownKeysWarning("add_artist", params, "id", "service", "user_id", "name")
	if params["id"] == "" || params["service"] == "" || params["user_id"] == "" {
		return "", fmt.Errorf("add_artist requires id=, service=, user_id=")
	}
	artist := models.Artist{
		ID:      params["id"],
		Service: params["service"],
		UserID:  params["user_id"],
		Name:    params["name"],
	}
	if artist.Name == "" {
		artist.Name = artist.ID
	}
	if err := a.storage.SaveArtist(artist); err != nil {
		return "", err
	}
	return warn + fmt.Sprintf("added %s", artist.ID), nil
}

func (a *app) cmdRemoveArtist(params map[string]string) (string, error) {
	warn := knownKeysWarning("remove_artist", params, "id")
	if params["id"] == "" {
		return "", fmt.Errorf("remove_artist requires id=<artist_id>")
	}
	if err := a.storage.RemoveArtist(params["id"]); err != nil {
		return "", err
	}
	return warn + fmt.Sprintf("removed %s", params["id"]), nil
}

func (a *app) cmdValidate(params map[string]string) (string, error) {
	warn := knownKeysWarning("validate", params)
	artists, err := a.storage.ListArtists()
	if err != nil {
		return "", err
	}
	domainCfg, err := a.storage.LoadConfig()
	if err != nil {
		return "", err
	}

	corpus := make([]validator.ArtistCorpus, 0, len(artists))
	for _, ar := range artists {
		posts, err := a.cache.LoadPosts(ar.ID)
		if err != nil {
			continue
		}
		corpus = append(corpus, validator.ArtistCorpus{Artist: ar, Posts: posts})
	}

	levels := validator.Levels{ArtistUnique: true, PostUnique: true, FileUnique: true}
	conflicts, _, err := a.validator.Validate(corpus, domainCfg, levels, a.ignores)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(warn)
	if len(conflicts) == 0 {
		b.WriteString("no path conflicts\n")
		return b.String(), nil
	}
	for _, c := range conflicts {
		fmt.Fprintf(&b, "[%s] %s shared by: %s\n", c.Level, c.Path, strings.Join(c.Owners, ", "))
	}
	return b.String(), nil
}

func (a *app) cmdMigrate(params map[string]string) (string, error) {
	warn := knownKeysWarning("migrate", params, "id", "artist_folder_template", "post_folder_template", "file_name_template")
	id := params["id"]
	if id == "" {
		return "", fmt.Errorf("migrate requires id=<artist_id>")
	}
	artist, ok, err := a.storage.GetArtist(id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("unknown artist id %q", id)
	}

	globalCfg, err := a.storage.LoadConfig()
	if err != nil {
		return "", err
	}
	posts, err := a.cache.LoadPosts(id)
	if err != nil {
		return "", err
	}

	oldCfg := effectiveArtistConfig(globalCfg, artist)
	newCfg := oldCfg
	if v := params["artist_folder_template"]; v != "" {
		newCfg.ArtistFolderTemplate = v
	}
	if v := params["post_folder_template"]; v != "" {
		newCfg.PostFolderTemplate = v
	}
	if v := params["file_name_template"]; v != "" {
		newCfg.FileNameTemplate = v
	}
	if newCfg.ArtistFolderTemplate == oldCfg.ArtistFolderTemplate &&
		newCfg.PostFolderTemplate == oldCfg.PostFolderTemplate &&
		newCfg.FileNameTemplate == oldCfg.FileNameTemplate {
		return warn + "no template changes given, nothing to migrate", nil
	}

	plan := a.migrator.GeneratePlan(a.paths, a.cfg.DownloadDir, artist, oldCfg, newCfg, posts)
	if len(plan.Mappings) == 0 {
		return warn + fmt.Sprintf("no renames to apply (%d conflicts, %d skipped)", len(plan.Conflicts), len(plan.Skipped)), nil
	}

	result := a.migrator.Execute(plan)

	artist.Config.ArtistFolderTemplate = newCfg.ArtistFolderTemplate
	artist.Config.PostFolderTemplate = newCfg.PostFolderTemplate
	artist.Config.FileNameTemplate = newCfg.FileNameTemplate
	if err := a.storage.SaveArtist(artist); err != nil {
		return "", err
	}

	return warn + fmt.Sprintf("migrated %d posts (%d failed, %d conflicts, %d skipped)",
		len(result.Succeeded), len(result.Failed), len(plan.Conflicts), len(plan.Skipped)), nil
}

// cmdReport writes every artist run summary recorded so far to a text
// file, defaulting to <data>/report.txt when path= isn't given.
func (a *app) cmdReport(params map[string]string) (string, error) {
	warn := knownKeysWarning("report", params, "path")
	path := params["path"]
	if path == "" {
		path = a.cfg.DataDir + "/report.txt"
	}
	if err := a.reporter.Generate(path); err != nil {
		return "", err
	}
	return warn + fmt.Sprintf("report written to %s", path), nil
}

// effectiveArtistConfig merges an artist's template and date-format
// overrides onto the global Config, the same precedence internal/downloader
// applies before rendering a path.
func effectiveArtistConfig(global models.Config, artist models.Artist) models.Config {
	cfg := global
	if artist.Config.DateFormat != "" {
		cfg.DateFormat = artist.Config.DateFormat
	}
	if artist.Config.ArtistFolderTemplate != "" {
		cfg.ArtistFolderTemplate = artist.Config.ArtistFolderTemplate
	}
	if artist.Config.PostFolderTemplate != "" {
		cfg.PostFolderTemplate = artist.Config.PostFolderTemplate
	}
	if artist.Config.FileNameTemplate != "" {
		cfg.FileNameTemplate = artist.Config.FileNameTemplate
	}
	return cfg
}

// runShell reads commands from stdin until ctx is cancelled or the user
// exits, dispatching each through app.handle — the same path the RPC
// bridge uses for its safelisted subset.
func runShell(ctx context.Context, a *app) {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	ui.Info("kmfetch shell ready. Type 'help' for commands, 'exit' to quit.")
	for {
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				return
			}
			command, params := rpcbridge.ParseCommand(line)
			out, err := a.handle(command, params)
			if err != nil {
				ui.Error(err.Error())
				continue
			}
			fmt.Print(out)
			if !strings.HasSuffix(out, "\n") {
				fmt.Println()
			}
		}
	}
}
