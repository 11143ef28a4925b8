package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tanami-dev/tanami/internal/client"
)

// NewArticlesCmd creates the articles command
func NewArticlesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "articles",
		Short: "List education articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArticles(cmd.Context(), format)
		},
	}

	addOutputFlag(cmd, &format)

	return cmd
}

func runArticles(ctx context.Context, format string, opts ...RunOption) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	return run(ctx, opts, func(rc *runConfig) error {
		articles, err := rc.env.Client.Articles(ctx)
		if err != nil {
			return explain(err)
		}

		if len(articles) == 0 && format == FormatTable {
			fmt.Fprintln(rc.out, "No articles found.")
			return nil
		}

		return render(rc.out, format, articles, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "ID\tTITLE\tPUBLISHED\tSUMMARY")
			fmt.Fprintln(tw, "──\t─────\t─────────\t───────")
			for _, a := range articles {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.ID, a.Title, orDash(a.CreatedAt), truncate(a.Content, 48))
			}
		})
	})
}

// NewVideosCmd creates the videos command
func NewVideosCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "videos",
		Short: "List education videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVideos(cmd.Context(), format)
		},
	}

	addOutputFlag(cmd, &format)

	return cmd
}

func runVideos(ctx context.Context, format string, opts ...RunOption) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	return run(ctx, opts, func(rc *runConfig) error {
		videos, err := rc.env.Client.Videos(ctx)
		if err != nil {
			return explain(err)
		}

		if len(videos) == 0 && format == FormatTable {
			fmt.Fprintln(rc.out, "No videos found.")
			return nil
		}

		return render(rc.out, format, videos, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "ID\tTITLE\tDURATION\tDESCRIPTION")
			fmt.Fprintln(tw, "──\t─────\t────────\t───────────")
			for _, v := range videos {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.ID, v.Title, orDash(v.Duration), truncate(v.Description, 48))
			}
		})
	})
}

// NewUploadArticleCmd creates the upload-article command
func NewUploadArticleCmd() *cobra.Command {
	var article client.NewArticle
	var imagePath string

	cmd := &cobra.Command{
		Use:   "upload-article",
		Short: "Publish an education article with a cover image",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUploadArticle(cmd.Context(), article, imagePath)
		},
	}

	cmd.Flags().StringVar(&article.Title, "title", "", "Article title")
	cmd.Flags().StringVar(&article.Content, "content", "", "Article body")
	cmd.Flags().StringVar(&imagePath, "image", "", "Cover image")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func runUploadArticle(ctx context.Context, article client.NewArticle, imagePath string, opts ...RunOption) error {
	image, f, err := client.OpenFile(imagePath)
	if err != nil {
		return err
	}
	defer f.Close()
	article.Image = image

	return run(ctx, opts, func(rc *runConfig) error {
		if _, err := rc.env.Client.UploadArticle(ctx, article); err != nil {
			return explain(err)
		}

		fmt.Fprintf(rc.out, "✓ Article '%s' published\n", article.Title)
		return nil
	})
}

// NewUploadVideoCmd creates the upload-video command
func NewUploadVideoCmd() *cobra.Command {
	var video client.NewVideo
	var videoPath string

	cmd := &cobra.Command{
		Use:   "upload-video",
		Short: "Publish an education video",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUploadVideo(cmd.Context(), video, videoPath)
		},
	}

	cmd.Flags().StringVar(&video.Title, "title", "", "Video title")
	cmd.Flags().StringVar(&video.Description, "description", "", "Video description")
	cmd.Flags().StringVar(&videoPath, "video", "", "Video file")
	_ = cmd.MarkFlagRequired("video")

	return cmd
}

func runUploadVideo(ctx context.Context, video client.NewVideo, videoPath string, opts ...RunOption) error {
	file, f, err := client.OpenFile(videoPath)
	if err != nil {
		return err
	}
	defer f.Close()
	video.Video = file

	return run(ctx, opts, func(rc *runConfig) error {
		if _, err := rc.env.Client.UploadVideo(ctx, video); err != nil {
			return explain(err)
		}

		fmt.Fprintf(rc.out, "✓ Video '%s' published\n", video.Title)
		return nil
	})
}
