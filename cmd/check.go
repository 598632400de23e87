package cmd

import (
	"context"
	"fmt"
	"time"

	"checkin-kiosk/internal/api"
	"checkin-kiosk/internal/camera/cvimage"
	"checkin-kiosk/internal/detector"
	"checkin-kiosk/internal/kiosk"
	"checkin-kiosk/internal/recognition"
	"checkin-kiosk/internal/utils"
	"checkin-kiosk/models"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Submit one image to the auth service and print the match",
	Long: `Check sends a single image through the same request the kiosk makes
every poll cycle and prints the result. Use it to verify connectivity and
that a known voter is recognised.

Pass --cascade to count faces locally before the image is sent.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().String("image", "", "Image file to submit (required)")
	checkCmd.Flags().String("officer", "", "Officer ID sent with the frame")
	checkCmd.Flags().String("cascade", "", "Haar cascade XML for a local face count")
	checkCmd.Flags().Int("min-face", 80, "Minimum face size in pixels for the local face count")
	_ = checkCmd.MarkFlagRequired("image")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	imagePath := mustGetString(cmd, "image")
	officer := mustGetString(cmd, "officer")
	if officer == "" {
		officer = cfg.Kiosk.DefaultOfficerID
	}

	img := gocv.IMRead(imagePath, gocv.IMReadColor)
	if img.Empty() {
		return fmt.Errorf("cannot read image %s", imagePath)
	}
	defer img.Close()

	out := cmd.OutOrStdout()

	if cascade := mustGetString(cmd, "cascade"); cascade != "" {
		fd, err := detector.NewFaceDetector(cascade, mustGetInt(cmd, "min-face"))
		if err != nil {
			return err
		}
		defer fd.Close()

		rects := fd.Detect(img)
		face, ok := detector.LargestFace(rects, fd.MinFaceSize)
		if ok {
			fmt.Fprintf(out, "Local faces: %d (largest %dx%d)\n", len(rects), face.Dx(), face.Dy())
		} else {
			fmt.Fprintf(out, "Local faces: %d (none at least %dpx)\n", len(rects), fd.MinFaceSize)
		}
	}

	frame, err := cvimage.EncodeJPEG(img, cfg.Kiosk.JPEGQuality)
	if err != nil {
		return err
	}

	apiClient := api.NewAPIClient(cfg.API.BaseURL, cfg.API.SecretKey, cfg.API.Timeout)
	apiClient.SetVerbose(cfg.Verbose)
	service := recognition.NewService(apiClient)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := service.ProcessFrame(ctx, utils.DataURL(models.FrameMIMEType, frame.JPEG), officer)
	if err != nil {
		return err
	}

	if !resp.IsMatch() {
		if resp.Error != "" {
			fmt.Fprintf(out, "No match: %s\n", resp.Error)
		} else {
			fmt.Fprintln(out, "No match")
		}
		return nil
	}

	v := resp.Voter
	fmt.Fprintf(out, "Match:      %s\n", v.FullName)
	fmt.Fprintf(out, "NIC:        %s\n", v.NIC)
	fmt.Fprintf(out, "Unique ID:  %s\n", v.UniqueID)
	fmt.Fprintf(out, "Confidence: %s (%s)\n", kiosk.FormatConfidence(resp.Confidence), kiosk.StyleFor(resp.Confidence))
	if v.FaceImagePath != "" {
		fmt.Fprintf(out, "Photo:      %s\n", utils.ResolveAssetURL(cfg.API.BaseURL, v.FaceImagePath))
	}
	return nil
}
