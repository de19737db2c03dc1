package mediacmd

import "submux/internal/toolchain"

// Tools carries the resolved executable paths the commands launch.
type Tools struct {
	FFmpeg     string
	FFprobe    string
	Mkvmerge   string
	Mkvextract string
}

// ToolsFromResolution extracts the executable paths from a resolution.
func ToolsFromResolution(r *toolchain.ToolResolution) Tools {
	return Tools{
		FFmpeg:     r.Tool(toolchain.ToolFFmpeg),
		FFprobe:    r.Tool(toolchain.ToolFFprobe),
		Mkvmerge:   r.Tool(toolchain.ToolMkvmerge),
		Mkvextract: r.Tool(toolchain.ToolMkvextract),
	}
}
