package ffmpeg

import (
	"bufio"
	"context"
	"os/exec"
	"strings"

	"github.com/forPelevin/heatclip/internal/types"
)

// vaapiDevice is the render node used for VAAPI encoding.
const vaapiDevice = "/dev/dri/renderD128"

// encoderNames maps each accelerator to the h264 encoder ffmpeg must list.
var encoderNames = map[types.Accelerator]string{
	types.AccelCUDA:         "h264_nvenc",
	types.AccelQSV:          "h264_qsv",
	types.AccelVideoToolbox: "h264_videotoolbox",
	types.AccelVAAPI:        "h264_vaapi",
}

// Detect lists the accelerators this ffmpeg build can encode with. AccelNone
// is always last.
func (a *Adapter) Detect(ctx context.Context) ([]types.Accelerator, error) {
	hwaccels, err := a.detectHWAccels(ctx)
	if err != nil {
		return nil, err
	}
	encoders, err := a.detectEncoders(ctx)
	if err != nil {
		return nil, err
	}

	var available []types.Accelerator
	for _, accel := range []types.Accelerator{types.AccelCUDA, types.AccelVideoToolbox, types.AccelVAAPI, types.AccelQSV} {
		if hwaccels[string(accel)] && encoders[encoderNames[accel]] {
			available = append(available, accel)
		}
	}
	return append(available, types.AccelNone), nil
}

// Select picks the preferred accelerator: CUDA, QSV, VideoToolbox, VAAPI.
func Select(available []types.Accelerator) types.Accelerator {
	priority := []types.Accelerator{types.AccelCUDA, types.AccelQSV, types.AccelVideoToolbox, types.AccelVAAPI}
	for _, accel := range priority {
		for _, av := range available {
			if av == accel {
				return accel
			}
		}
	}
	return types.AccelNone
}

// SelectEncoder returns the software encoder unless hardware is requested
// and detected. Detection errors fall back to software.
func (a *Adapter) SelectEncoder(ctx context.Context, hardware bool) types.Encoder {
	if !hardware {
		return NewEncoder(types.AccelNone)
	}
	available, err := a.Detect(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("hardware detection failed, using software encoder")
		return NewEncoder(types.AccelNone)
	}
	return NewEncoder(Select(available))
}

func NewEncoder(accel types.Accelerator) types.Encoder {
	switch accel {
	case types.AccelCUDA:
		return types.Encoder{
			Accelerator: types.AccelCUDA,
			Codec:       "h264_nvenc",
			Args:        []string{"-c:v", "h264_nvenc", "-preset", "p4", "-tune", "ll", "-cq", "26"},
		}
	case types.AccelQSV:
		return types.Encoder{
			Accelerator: types.AccelQSV,
			Codec:       "h264_qsv",
			Args:        []string{"-c:v", "h264_qsv", "-preset", "veryfast", "-global_quality", "26"},
		}
	case types.AccelVideoToolbox:
		return types.Encoder{
			Accelerator: types.AccelVideoToolbox,
			Codec:       "h264_videotoolbox",
			Args:        []string{"-c:v", "h264_videotoolbox", "-realtime", "true", "-prio_speed", "true"},
		}
	case types.AccelVAAPI:
		return types.Encoder{
			Accelerator: types.AccelVAAPI,
			Codec:       "h264_vaapi",
			InputArgs:   []string{"-vaapi_device", vaapiDevice},
			Args:        []string{"-c:v", "h264_vaapi", "-qp", "26"},
			Upload:      "format=nv12,hwupload",
		}
	case types.AccelNone:
	}
	return types.Encoder{
		Accelerator: types.AccelNone,
		Codec:       "libx264",
		Args:        []string{"-c:v", "libx264", "-preset", "ultrafast", "-crf", "26"},
	}
}

func (a *Adapter) detectHWAccels(ctx context.Context) (map[string]bool, error) {
	output, err := exec.CommandContext(ctx, a.ffmpeg, "-hide_banner", "-hwaccels").Output()
	if err != nil {
		return nil, err
	}

	result := make(map[string]bool)
	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasSuffix(line, ":") {
			result[line] = true
		}
	}
	return result, nil
}

func (a *Adapter) detectEncoders(ctx context.Context) (map[string]bool, error) {
	output, err := exec.CommandContext(ctx, a.ffmpeg, "-hide_banner", "-encoders").Output()
	if err != nil {
		return nil, err
	}

	result := make(map[string]bool)
	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 {
			result[fields[1]] = true
		}
	}
	return result, nil
}
