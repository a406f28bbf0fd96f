package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"ragdesk/internal/app"
	"ragdesk/internal/domain"
	"ragdesk/internal/notify"
	"ragdesk/internal/service"
	"ragdesk/internal/vectorstore"
)

type command func(ctx context.Context, c *app.Container, args []string, out io.Writer) error

var commands = map[string]command{
	"files":  listFiles,
	"upload": uploadFiles,
	"delete": deleteFile,
	"models": listModels,
	"ask":    ask,
	"embed":  embed,
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

var (
	nameColor  = color.New(color.Bold)
	dimColor   = color.New(color.FgHiBlack)
	labelColor = color.New(color.FgMagenta, color.Bold)
	markColor  = color.New(color.FgYellow, color.Bold)
)

func listFiles(ctx context.Context, c *app.Container, args []string, out io.Writer) error {
	if err := c.Files.Load(ctx); err != nil {
		return err
	}
	files := c.Files.Files()
	if len(files) == 0 {
		fmt.Fprintln(out, "No files uploaded.")
		return nil
	}
	for _, f := range files {
		fmt.Fprintf(out, "%s\t%s\n", nameColor.Sprint(f.Name), dimColor.Sprint(f.Path))
	}
	return nil
}

func uploadFiles(ctx context.Context, c *app.Container, args []string, out io.Writer) error {
	if len(args) == 0 {
		return &usageError{"upload: no files given"}
	}
	uploads, closeAll, err := service.OpenUploads(args)
	if err != nil {
		c.Notifier.Notify(notify.Errorf("File upload failed: %v", err))
		return err
	}
	defer closeAll()
	return c.Files.Upload(ctx, uploads)
}

func deleteFile(ctx context.Context, c *app.Container, args []string, out io.Writer) error {
	if len(args) != 1 {
		return &usageError{"delete: expected exactly one file name"}
	}
	if err := c.Files.Load(ctx); err != nil {
		return err
	}
	f, ok := c.Files.Lookup(args[0])
	if !ok {
		err := &domain.ValidationError{Reason: fmt.Sprintf("no uploaded file named %q", args[0])}
		c.Notifier.Notify(notify.Errorf("File deletion failed: %s", err.Reason))
		return err
	}
	return c.Files.Remove(ctx, f)
}

func listModels(ctx context.Context, c *app.Container, args []string, out io.Writer) error {
	if err := c.Models.Refresh(ctx); err != nil {
		return err
	}
	selected := c.Models.Selected()
	for _, m := range c.Models.Models() {
		if m == selected {
			fmt.Fprintf(out, "* %s\n", nameColor.Sprint(m))
		} else {
			fmt.Fprintf(out, "  %s\n", m)
		}
	}
	return nil
}

func ask(ctx context.Context, c *app.Container, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	files := fs.String("files", "", "comma-separated file names to search")
	model := fs.String("model", "", "model to answer with")
	if err := fs.Parse(args); err != nil {
		return &usageError{"ask: " + err.Error()}
	}
	query := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(query) == "" {
		return &usageError{"ask: no question given"}
	}

	if err := c.Files.Load(ctx); err != nil {
		return err
	}
	for _, name := range strings.Split(*files, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := c.Files.Lookup(name); !ok {
			err := &domain.ValidationError{Reason: fmt.Sprintf("no uploaded file named %q", name)}
			c.Notifier.Notify(notify.Errorf("%s", err.Reason))
			return err
		}
		c.Files.Include(name)
	}

	if c.Chat.RequiresModel() {
		if err := c.Models.Load(ctx); err != nil {
			return err
		}
		if *model != "" {
			if err := c.Models.Select(*model); err != nil {
				c.Notifier.Notify(notify.Errorf("%v", err))
				return err
			}
		}
	}

	if err := c.Chat.Submit(ctx, query, c.Files.Selection(), c.Models.Selected()); err != nil {
		return err
	}
	msgs := c.Chat.Messages()
	answer := msgs[len(msgs)-1]
	fmt.Fprintln(out, answer.Content)
	for i, src := range answer.Sources {
		fmt.Fprintln(out)
		labelColor.Fprintf(out, "Source %d: %s (Score: %.2f)\n", i+1, src.Source(), src.Score)
		ex := c.Excerpter.Excerpt(src.Content, query)
		var parts []string
		if ex.Before != "" {
			parts = append(parts, ex.Before)
		}
		if ex.Matched {
			parts = append(parts, markColor.Sprint(ex.Best))
		} else if ex.Best != "" {
			parts = append(parts, ex.Best)
		}
		if ex.After != "" {
			parts = append(parts, ex.After)
		}
		if len(parts) > 0 {
			fmt.Fprintln(out, strings.Join(parts, " "))
		}
	}
	return nil
}

func embed(ctx context.Context, c *app.Container, args []string, out io.Writer) error {
	var mu sync.Mutex
	printed := 0
	cancel := c.Embedding.Subscribe(func() {
		mu.Lock()
		defer mu.Unlock()
		logs := c.Embedding.Logs()
		for _, l := range logs[min(printed, len(logs)):] {
			fmt.Fprintln(out, dimColor.Sprint(l))
		}
		printed = len(logs)
	})
	defer cancel()

	if !c.Embedding.Start(ctx) {
		return &domain.ValidationError{Reason: "embedding already running"}
	}
	c.Embedding.Wait()
	if err := c.Embedding.LastError(); err != nil {
		return err
	}
	if c.Inspector != nil {
		info, err := c.Inspector.Collection(ctx)
		if err != nil {
			c.Notifier.Notify(domain.Notification{Level: domain.LevelInfo, Message: "Vector store unreachable: " + domain.Detail(err, err.Error())})
			return nil
		}
		if info.Exists {
			fmt.Fprintf(out, "%s: %s, %d points, %d indexed\n", info.Name, info.Status, info.PointsCount, info.IndexedCount)
		} else {
			fmt.Fprintln(out, vectorstore.DescribeMissing(ctx, c.Inspector, info.Name))
		}
		fmt.Fprintln(out, c.Inspector.DashboardURL())
	}
	return nil
}
