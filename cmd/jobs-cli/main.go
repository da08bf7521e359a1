package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/client"
	"github.com/cuongbtq/jobboard/shared/logger"
	"github.com/joho/godotenv"
)

const usage = `Usage: jobs-cli [-api URL] [-v] <command> [flags]

Commands:
  list   [-category C] [-location L] [-experience E]
  show   -id N
  apply  -job N -name NAME -email EMAIL [-cover TEXT] [-resume URL]
  filters
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	_ = godotenv.Load()

	defaultAPI := os.Getenv("JOBBOARD_API_URL")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:3000"
	}

	global := flag.NewFlagSet("jobs-cli", flag.ContinueOnError)
	apiURL := global.String("api", defaultAPI, "Base URL of the job board API")
	verbose := global.Bool("v", false, "Log requests to stderr")
	global.Usage = func() { fmt.Fprint(global.Output(), usage) }
	if err := global.Parse(args); err != nil {
		return err
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	appLogger, err := logger.New(&logger.Config{Level: level, Format: "console", Output: "stderr", TimeFormat: time.Kitchen})
	if err != nil {
		return err
	}
	defer appLogger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(*apiURL, client.WithLogger(appLogger.Logger))

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return errors.New("missing command")
	}

	switch rest[0] {
	case "list":
		return listCmd(ctx, api, appLogger, rest[1:], out)
	case "show":
		return showCmd(ctx, api, rest[1:], out)
	case "apply":
		return applyCmd(ctx, api, rest[1:], out)
	case "filters":
		return filtersCmd(ctx, api, out)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

// listCmd drives a Board: the initial all-jobs fetch, then the selected
// filters, printing whatever state the board settles in
func listCmd(ctx context.Context, api *client.Client, appLogger *logger.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	category := fs.String("category", domain.FilterAll, "Category filter")
	location := fs.String("location", domain.FilterAll, "Location filter")
	experience := fs.String("experience", domain.FilterAll, "Experience level filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	board := client.NewBoard(ctx, api, appLogger.Logger)
	defer board.Close()

	board.Start()
	board.SetFilter(domain.FilterCriteria{Category: *category, Location: *location, Experience: *experience})
	board.Wait()

	state := board.Snapshot()
	switch state.Status {
	case client.StatusFailed:
		return describe(state.Err)
	case client.StatusLoaded:
		printJobs(out, state.Jobs)
		return nil
	default:
		return ctx.Err()
	}
}

func showCmd(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	id := fs.Int64("id", 0, "Job id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	job, err := api.GetJob(ctx, *id)
	if err != nil {
		return describe(err)
	}

	fmt.Fprintf(out, "%s at %s\n", job.Title, job.Company)
	fmt.Fprintf(out, "  %s | %s | %s\n", job.Location, job.Category, job.ExperienceLevel)
	if job.Salary != nil {
		fmt.Fprintf(out, "  Salary: %s\n", *job.Salary)
	}
	fmt.Fprintf(out, "  Posted: %s\n", job.PostedAt.Local().Format(time.DateOnly))
	if job.Description != nil {
		fmt.Fprintf(out, "\n%s\n", *job.Description)
	}
	return nil
}

func applyCmd(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	jobID := fs.Int64("job", 0, "Job id")
	name := fs.String("name", "", "Full name")
	email := fs.String("email", "", "Email address")
	cover := fs.String("cover", "", "Cover letter")
	resume := fs.String("resume", "", "Resume URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := domain.ApplicationInput{
		FullName:    *name,
		Email:       *email,
		CoverLetter: *cover,
		ResumeURL:   *resume,
	}
	if *jobID != 0 {
		in.JobID = jobID
	}

	msg, err := api.Apply(ctx, in)
	if err != nil {
		return describe(err)
	}

	fmt.Fprintln(out, msg)
	return nil
}

func filtersCmd(ctx context.Context, api *client.Client, out io.Writer) error {
	filters, err := api.Filters(ctx)
	if err != nil {
		return describe(err)
	}

	fmt.Fprintf(out, "categories:        %s\n", strings.Join(filters.Categories, ", "))
	fmt.Fprintf(out, "locations:         %s\n", strings.Join(filters.Locations, ", "))
	fmt.Fprintf(out, "experience levels: %s\n", strings.Join(filters.ExperienceLevels, ", "))
	return nil
}

func printJobs(out io.Writer, jobs []domain.JobPosting) {
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No jobs match the selected filters.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCOMPANY\tLOCATION\tCATEGORY\tLEVEL\tSALARY")
	for _, j := range jobs {
		salary := "-"
		if j.Salary != nil {
			salary = *j.Salary
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			j.ID, j.Title, j.Company, j.Location, j.Category, j.ExperienceLevel, salary)
	}
	tw.Flush()
}

// describe turns API errors into messages for a person at a terminal
func describe(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			return errors.New(apiErr.Message)
		}
		return err
	case errors.Is(err, domain.ErrJobNotFound):
		return errors.New("job not found")
	case errors.Is(err, domain.ErrStoreUnavailable):
		return fmt.Errorf("the job board is unavailable, try again later (%w)", err)
	}
	return err
}
