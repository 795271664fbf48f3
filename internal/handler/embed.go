package handler

import (
	"fmt"
	htmlstd "html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	embedAspectLandscape = "16:9"
	embedAspectSquare    = "1:1"
)

var (
	embedLinePattern = regexp.MustCompile(`^\s*<?((?:https?://)?[^\s]+)>?\s*$`)
	embedSrcPattern  = regexp.MustCompile(
		`^https://(?:www\.youtube\.com/embed/|www\.youtube-nocookie\.com/embed/|player\.vimeo\.com/video/|sketchfab\.com/models/[0-9a-f]{32}/embed)`,
	)
	embedTimePattern  = regexp.MustCompile(`(?i)(\d+)(h|m|s)`) // t=1h2m3s
	sketchfabIDSuffix = regexp.MustCompile(`(?:^|-)([0-9a-f]{32})$`)
	listIndexPattern  = regexp.MustCompile(`^\d+\.\s+`)
)

// buildContentSanitizer 在 UGC 策略基础上放行受信任的 iframe 嵌入。
func buildContentSanitizer() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("iframe")
	policy.AllowAttrs("class", "data-embed", "data-embed-platform", "data-embed-aspect", "data-embed-source").OnElements("div")
	policy.AllowAttrs("src").Matching(embedSrcPattern).OnElements("iframe")
	policy.AllowAttrs("title", "allow", "allowfullscreen", "frameborder", "loading", "referrerpolicy", "sandbox").OnElements("iframe")
	return policy
}

type mediaEmbed struct {
	Platform string
	Source   string
	EmbedURL string
	Aspect   string
}

// applyMediaEmbeds 把独占一行的视频或 3D 模型链接替换为 iframe。
func applyMediaEmbeds(markdown string) string {
	if strings.TrimSpace(markdown) == "" {
		return markdown
	}

	lines := strings.Split(markdown, "\n")
	inFence := false
	fenceMarker := ""

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if marker := detectFenceMarker(trimmed); marker != "" {
			if inFence {
				if strings.HasPrefix(trimmed, fenceMarker) {
					inFence = false
					fenceMarker = ""
				}
			} else {
				inFence = true
				fenceMarker = marker
			}
			continue
		}

		if inFence || isIndentedCodeLine(line) || shouldSkipEmbedLine(trimmed) {
			continue
		}

		match := embedLinePattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}

		embed, ok := parseMediaEmbed(match[1])
		if !ok {
			continue
		}
		lines[i] = buildEmbedHTML(embed)
	}

	return strings.Join(lines, "\n")
}

func detectFenceMarker(line string) string {
	if strings.HasPrefix(line, "```") {
		return "```"
	}
	if strings.HasPrefix(line, "~~~") {
		return "~~~"
	}
	return ""
}

func isIndentedCodeLine(line string) bool {
	return strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t")
}

func shouldSkipEmbedLine(line string) bool {
	if line == "" || strings.HasPrefix(line, ">") {
		return true
	}
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "+ ") {
		return true
	}
	return listIndexPattern.MatchString(line)
}

func parseMediaEmbed(raw string) (mediaEmbed, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(strings.ToLower(trimmed), "http") {
		trimmed = "https://" + trimmed
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed == nil {
		return mediaEmbed{}, false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Hostname() == "" {
		return mediaEmbed{}, false
	}

	if embed, ok := parseYouTubeEmbed(parsed, trimmed); ok {
		return embed, true
	}
	if embed, ok := parseVimeoEmbed(parsed, trimmed); ok {
		return embed, true
	}
	if embed, ok := parseSketchfabEmbed(parsed, trimmed); ok {
		return embed, true
	}
	return mediaEmbed{}, false
}

func parseYouTubeEmbed(u *url.URL, source string) (mediaEmbed, bool) {
	host := strings.ToLower(u.Hostname())
	var videoID string

	switch {
	case host == "youtu.be":
		videoID = strings.Trim(u.Path, "/")
	case isHostOrSubdomain(host, "youtube.com"):
		path := strings.Trim(u.Path, "/")
		switch {
		case path == "watch":
			videoID = u.Query().Get("v")
		case strings.HasPrefix(path, "shorts/"):
			videoID = strings.TrimPrefix(path, "shorts/")
		case strings.HasPrefix(path, "embed/"):
			videoID = strings.TrimPrefix(path, "embed/")
		}
	default:
		return mediaEmbed{}, false
	}
	videoID, _, _ = strings.Cut(videoID, "/")
	if videoID == "" {
		return mediaEmbed{}, false
	}

	values := url.Values{}
	values.Set("rel", "0")
	values.Set("playsinline", "1")
	if start := parseYouTubeStart(u); start > 0 {
		values.Set("start", strconv.Itoa(start))
	}

	return mediaEmbed{
		Platform: "youtube",
		Source:   source,
		EmbedURL: "https://www.youtube.com/embed/" + url.PathEscape(videoID) + "?" + values.Encode(),
		Aspect:   embedAspectLandscape,
	}, true
}

func parseYouTubeStart(u *url.URL) int {
	query := u.Query()
	value := query.Get("start")
	if value == "" {
		value = query.Get("t")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return max(seconds, 0)
	}

	total := 0
	for _, match := range embedTimePattern.FindAllStringSubmatch(value, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		switch strings.ToLower(match[2]) {
		case "h":
			total += n * 3600
		case "m":
			total += n * 60
		case "s":
			total += n
		}
	}
	return total
}

func parseVimeoEmbed(u *url.URL, source string) (mediaEmbed, bool) {
	if !isHostOrSubdomain(u.Hostname(), "vimeo.com") {
		return mediaEmbed{}, false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	id := segments[len(segments)-1]
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return mediaEmbed{}, false
	}
	return mediaEmbed{
		Platform: "vimeo",
		Source:   source,
		EmbedURL: "https://player.vimeo.com/video/" + id,
		Aspect:   embedAspectLandscape,
	}, true
}

func parseSketchfabEmbed(u *url.URL, source string) (mediaEmbed, bool) {
	if !isHostOrSubdomain(u.Hostname(), "sketchfab.com") {
		return mediaEmbed{}, false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || (segments[0] != "3d-models" && segments[0] != "models") {
		return mediaEmbed{}, false
	}
	embedURL := modelEmbedURL(segments[1])
	if embedURL == "" {
		return mediaEmbed{}, false
	}
	return mediaEmbed{
		Platform: "sketchfab",
		Source:   source,
		EmbedURL: embedURL,
		Aspect:   embedAspectSquare,
	}, true
}

// modelEmbedURL 将 Sketchfab 模型 ID（或带 ID 后缀的 slug）转换为嵌入地址。
func modelEmbedURL(modelID string) string {
	match := sketchfabIDSuffix.FindStringSubmatch(strings.ToLower(strings.TrimSpace(modelID)))
	if match == nil {
		return ""
	}
	return fmt.Sprintf("https://sketchfab.com/models/%s/embed", match[1])
}

func buildEmbedHTML(embed mediaEmbed) string {
	return fmt.Sprintf(
		`<div class="media-embed" data-embed="true" data-embed-platform="%s" data-embed-aspect="%s" data-embed-source="%s">`+
			`<iframe src="%s" title="%s" loading="lazy" allow="%s" allowfullscreen frameborder="0" referrerpolicy="strict-origin-when-cross-origin" sandbox="%s"></iframe>`+
			`</div>`,
		htmlstd.EscapeString(embed.Platform),
		htmlstd.EscapeString(embed.Aspect),
		htmlstd.EscapeString(embed.Source),
		htmlstd.EscapeString(embed.EmbedURL),
		htmlstd.EscapeString(embedTitle(embed.Platform)),
		"accelerometer; autoplay; clipboard-write; encrypted-media; fullscreen; gyroscope; picture-in-picture; xr-spatial-tracking",
		embedSandbox(embed.Platform),
	)
}

// embedSandbox 禁止嵌入页面跳转顶层窗口。Sketchfab 的查看器需要 pointer lock。
func embedSandbox(platform string) string {
	sandbox := "allow-scripts allow-same-origin allow-presentation allow-popups"
	if platform == "sketchfab" {
		sandbox += " allow-pointer-lock"
	}
	return sandbox
}

func embedTitle(platform string) string {
	switch platform {
	case "youtube":
		return "YouTube 视频播放器"
	case "vimeo":
		return "Vimeo 视频播放器"
	case "sketchfab":
		return "Sketchfab 3D 模型"
	default:
		return "嵌入内容"
	}
}

func isHostOrSubdomain(host, domain string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	domain = strings.ToLower(strings.TrimSpace(domain))
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}
