// autotitle suggests titles for untitled photos using Gemini.
package main

import (
	"context"
	"flag"
	"os"

	_ "image/jpeg"
	_ "image/png"

	"google.golang.org/genai"
	"k8s.io/klog/v2"

	"github.com/tstromberg/photolab/pkg/photolab"
)

var (
	dryRun    = flag.Bool("n", false, "dry-run mode, don't write titles")
	overwrite = flag.Bool("o", false, "overwrite existing titles")
	backupDir = flag.String("backup", "", "directory to copy originals to before their metadata is rewritten")
	modelName = flag.String("model", "gemini-2.5-flash", "Gemini model to use")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if len(flag.Args()) == 0 {
		klog.Fatalf("No input directories provided. Usage: %s <input_dir1> [input_dir2 ...]", os.Args[0])
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_AI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		klog.Fatalf("genai: %v", err)
	}

	et, err := photolab.NewExiftoolStore(*backupDir)
	if err != nil {
		klog.Fatalf("exiftool: %v", err)
	}
	defer func() {
		if err := et.Close(); err != nil {
			klog.Errorf("Failed to close exiftool: %v", err)
		}
	}()

	total := 0
	titled := 0
	for _, dir := range flag.Args() {
		lib, err := photolab.Find(ctx, dir, et)
		if err != nil {
			klog.Errorf("find %s: %v", dir, err)
			continue
		}

		for _, r := range lib.Records {
			total++
			if !*overwrite && r.Properties().Title != "" {
				klog.Infof("%s has a title: %q", r.File().Path, r.Title())
				continue
			}

			t, err := photolab.SuggestTitle(ctx, client.Models, *modelName, r)
			if err != nil {
				klog.Errorf("suggest %s: %v", r.File().Path, err)
				continue
			}

			klog.Infof("titling %s: %q", r.File().Path, t)
			if *dryRun {
				continue
			}
			if r.SetTitle(t) {
				titled++
			}
		}
		lib.Wait()
	}

	klog.Infof("autotitle completed. Titled %d of %d photos", titled, total)
}
