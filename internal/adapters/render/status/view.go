package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/turkuazz/launcher/internal/application"
	"github.com/turkuazz/launcher/internal/domain"
)

func renderView(report Report, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Turkuazz Launcher"),
		s.header.Render(fmt.Sprintf("accounts: %d  instances: %d", len(report.Identities), len(report.Instances))),
	}

	lines = append(lines, s.section.Render(renderIdentities(report, opts, s)))

	if report.Disk != nil {
		lines = append(lines, s.section.Render(renderDisk(*report.Disk, s)))
	}

	if len(report.Instances) > 0 {
		lines = append(lines, s.section.Render(renderInstances(report.Instances, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderIdentities(report Report, opts RenderOptions, s styles) string {
	if len(report.Identities) == 0 {
		return s.empty.Render("No accounts stored. Run \"turkuazz login\" or \"turkuazz account add\".")
	}

	parts := make([]string, 0, len(report.Identities))
	for _, identity := range report.Identities {
		parts = append(parts, renderIdentity(identity, identity.DedupKey() == report.ActiveKey, opts, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderIdentity(identity domain.Identity, isActive bool, opts RenderOptions, s styles) string {
	marker := "  "
	nameStyle := s.identity
	if isActive {
		marker = s.active.Render("* ")
		nameStyle = s.active
	}

	head := lipgloss.JoinHorizontal(
		lipgloss.Top,
		marker,
		nameStyle.Render(identity.DisplayName),
		" ",
		s.detail.Render(fmt.Sprintf("(%s)", identity.Kind)),
	)

	if identity.Kind != domain.IdentityOnline {
		return head
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, head, "  ", tokenFreshness(identity, opts.Now, s))
}

// tokenFreshness shows how much of the assumed one hour access token
// lifetime is left.
func tokenFreshness(identity domain.Identity, now time.Time, s styles) string {
	if now.IsZero() {
		now = time.Now()
	}

	remaining := time.UnixMilli(identity.ExpiresAtMs).Sub(now)
	if remaining <= 0 {
		return s.warning.Render("[token expired]")
	}

	fraction := remaining.Minutes() / 60.0
	if fraction > 1 {
		fraction = 1
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		renderBar(fraction, 16, s),
		" ",
		s.detail.Render(fmt.Sprintf("token %dm left", int(math.Ceil(remaining.Minutes())))),
	)
}

func renderDisk(disk application.DiskSpaceReport, s styles) string {
	label := s.detail.Render(fmt.Sprintf("disk: %.1f GB free (need %.1f GB)", disk.AvailableGB, disk.RequiredGB))
	if !disk.HasSpace {
		return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", s.warning.Render("[insufficient]"))
	}

	fraction := 1.0
	if disk.AvailableGB > 0 {
		fraction = disk.RequiredGB / disk.AvailableGB
		if fraction > 1 {
			fraction = 1
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", renderBar(1-fraction, 16, s))
}

func renderInstances(instances []domain.Instance, s styles) string {
	parts := make([]string, 0, len(instances)+1)
	parts = append(parts, s.header.Render("running:"))

	for _, instance := range instances {
		state := "starting"
		if instance.HasSignaledReady {
			state = "ready"
		}
		parts = append(parts, s.detail.Render(
			fmt.Sprintf("  %s  %s  [%s]", shortID(instance.InstanceID), instance.ProfileName, state)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderBar(fraction float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	filled := int(math.Round(float64(width) * fraction))
	if filled > width {
		filled = width
	}
	empty := width - filled

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", empty)),
		s.barBracket.Render("]"),
	)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
