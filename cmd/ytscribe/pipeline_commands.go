package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ytscribe/internal/services/clarifai"
	"ytscribe/internal/session"
)

type pipelineStep int

const (
	stepTranscript pipelineStep = iota
	stepPunctuate
	stepDescribe
)

type pipelineOptions struct {
	model    string
	jsonOut  bool
	showText bool
}

// stateOutput is the JSON form of a pipeline run.
type stateOutput struct {
	Reference   string `json:"reference"`
	VideoID     string `json:"videoId"`
	Model       string `json:"model,omitempty"`
	Stage       string `json:"stage"`
	Transcript  string `json:"transcript,omitempty"`
	Formatted   string `json:"formatted,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Raw         string `json:"raw,omitempty"`
	Notice      string `json:"notice,omitempty"`
}

func newPipelineCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newPipelineCommand(ctx, stepTranscript, "transcript <url-or-id>", "Print the cleaned caption transcript"),
		newPipelineCommand(ctx, stepPunctuate, "punctuate <url-or-id>", "Print the transcript with punctuation and paragraphs restored"),
		newPipelineCommand(ctx, stepDescribe, "describe <url-or-id>", "Propose a title and description for the video"),
	}
}

func newPipelineCommand(ctx *commandContext, step pipelineStep, use, short string) *cobra.Command {
	var opts pipelineOptions
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, err := ctx.controller()
			if err != nil {
				return err
			}
			st, err := runPipeline(cmd.Context(), controller, args[0], step, opts.model)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd, toStateOutput(st))
			}
			printState(cmd.OutOrStdout(), st, step, opts.showText)
			return nil
		},
	}
	if step != stepTranscript {
		cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Model name (see `ytscribe models`)")
	}
	if step == stepDescribe {
		cmd.Flags().BoolVar(&opts.showText, "show-text", false, "Also print the punctuated text")
	}
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Output as JSON")
	return cmd
}

func runPipeline(ctx context.Context, controller *session.Controller, reference string, step pipelineStep, model string) (session.State, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := controller.SetReference(ctx, session.State{}, reference)
	if err != nil {
		return st, actionError(err)
	}
	if st.Transcript.Empty() {
		return st, noticeError(st, "no transcript available")
	}
	if step == stepTranscript {
		return st, nil
	}

	st, err = controller.Punctuate(ctx, st, model)
	if err != nil {
		return st, actionError(err)
	}
	if st.Formatted == "" {
		return st, noticeError(st, "model returned no punctuated text")
	}
	if step == stepPunctuate {
		return st, nil
	}

	st, err = controller.GenerateMetadata(ctx, st, model)
	if err != nil {
		return st, actionError(err)
	}
	if st.Metadata.Empty() {
		return st, noticeError(st, "model returned no title or description")
	}
	return st, nil
}

func actionError(err error) error {
	if remote, ok := clarifai.AsRemoteAPIError(err); ok {
		return fmt.Errorf("error from Clarifai API: %s", remote.Description)
	}
	return err
}

func noticeError(st session.State, fallback string) error {
	if st.Notice != "" {
		return errors.New(st.Notice)
	}
	return errors.New(fallback)
}

func printState(out io.Writer, st session.State, step pipelineStep, showText bool) {
	switch step {
	case stepTranscript:
		fmt.Fprintln(out, st.TranscriptText())
	case stepPunctuate:
		fmt.Fprintln(out, st.Formatted)
	case stepDescribe:
		if showText {
			fmt.Fprintln(out, st.Formatted)
			fmt.Fprintln(out)
		}
		if st.Metadata.Title == "" && st.Metadata.Description == "" {
			fmt.Fprintln(out, st.Metadata.Raw)
			return
		}
		if st.Metadata.Title != "" {
			fmt.Fprintf(out, "Title: %s\n", st.Metadata.Title)
		}
		if st.Metadata.Description != "" {
			fmt.Fprintf(out, "Description:\n%s\n", st.Metadata.Description)
		}
	}
}

func toStateOutput(st session.State) stateOutput {
	return stateOutput{
		Reference:   st.Reference,
		VideoID:     st.VideoID,
		Model:       st.Model,
		Stage:       string(st.CurrentStage()),
		Transcript:  st.TranscriptText(),
		Formatted:   st.Formatted,
		Title:       st.Metadata.Title,
		Description: st.Metadata.Description,
		Raw:         st.Metadata.Raw,
		Notice:      st.Notice,
	}
}
