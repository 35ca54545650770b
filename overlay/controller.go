package overlay

import (
	"errors"
	"fmt"
	"log/slog"
)

// Controller mounts and unmounts the single overlay instance.
type Controller struct {
	doc     Document
	loc     Location
	icons   ResourceResolver
	state   *State
	bridge  *Bridge
	guard   *guard
	logger  *slog.Logger
	cfg     *Config
	mounted bool
	changed func()
}

// Ensure makes the document reflect the current state: when the context is
// not dismissed, a player is present and no overlay exists, the overlay is
// built and appended to the player. A dismissed context removes any overlay
// left behind. Every other unmet condition is a silent no-op.
func (c *Controller) Ensure() error {
	existing, err := c.doc.ElementByID(c.cfg.ContainerID)
	if err != nil {
		return fmt.Errorf("overlay: lookup container: %w", err)
	}
	c.mounted = existing != nil

	if c.state.Current().Dismissed {
		if existing == nil {
			return nil
		}
		if err := existing.Remove(); err != nil {
			return fmt.Errorf("overlay: unmount: %w", err)
		}
		c.mounted = false
		return nil
	}
	if existing != nil {
		return nil
	}

	player, err := c.findPlayer()
	if err != nil {
		return err
	}
	if player == nil {
		return nil
	}

	container, err := c.build()
	if err != nil {
		return err
	}

	pos, err := player.ComputedPosition()
	if err != nil {
		return fmt.Errorf("overlay: player position: %w", err)
	}
	if pos == "" || pos == "static" {
		if err := player.SetStyle("position", "relative"); err != nil {
			return fmt.Errorf("overlay: player position: %w", err)
		}
	}

	if err := player.AppendChild(container); err != nil {
		return fmt.Errorf("overlay: mount: %w", err)
	}
	c.mounted = true
	c.logger.Debug("overlay: mounted", "identity", c.state.Current().Identity)
	return nil
}

// Unmount removes the overlay if present, whatever the player state.
func (c *Controller) Unmount() error {
	existing, err := c.doc.ElementByID(c.cfg.ContainerID)
	if err != nil {
		return fmt.Errorf("overlay: lookup container: %w", err)
	}
	if existing == nil {
		c.mounted = false
		return nil
	}
	if err := existing.Remove(); err != nil {
		return fmt.Errorf("overlay: unmount: %w", err)
	}
	c.mounted = false
	return nil
}

// findPlayer returns the first element matching the configured player
// selectors, in order.
func (c *Controller) findPlayer() (Element, error) {
	for _, sel := range c.cfg.PlayerSelectors {
		el, err := c.doc.QuerySelector(sel)
		if err != nil {
			return nil, fmt.Errorf("overlay: query %s: %w", sel, err)
		}
		if el != nil {
			return el, nil
		}
	}
	return nil, nil
}

func (c *Controller) build() (Element, error) {
	b := &builder{doc: c.doc}

	container := b.create("div")
	b.attr(container, "id", c.cfg.ContainerID)

	download := b.create("button")
	b.attr(download, "class", "pica-download-btn")
	b.attr(download, "title", c.cfg.DownloadTitle)

	icon := b.create("img")
	if src, ok := c.iconURL(); ok {
		b.attr(icon, "src", src)
	}
	b.attr(icon, "alt", "Pica")

	label := b.create("span")
	b.text(label, c.cfg.DownloadLabel)
	b.append(download, icon)
	b.append(download, label)

	closeBtn := b.create("button")
	b.attr(closeBtn, "class", "pica-close-btn")
	b.text(closeBtn, "×")
	b.attr(closeBtn, "title", "Hide")

	b.append(container, download)
	b.append(container, closeBtn)
	if b.err != nil {
		return nil, fmt.Errorf("overlay: build: %w", b.err)
	}

	if err := download.OnActivate(c.activation("download", container, true)); err != nil {
		return nil, fmt.Errorf("overlay: wire download: %w", err)
	}
	if err := closeBtn.OnActivate(c.activation("close", container, false)); err != nil {
		return nil, fmt.Errorf("overlay: wire close: %w", err)
	}
	return container, nil
}

// activation returns the click handler of an overlay control. Both controls
// dismiss the current context and remove the overlay; the download control
// also hands the video off first.
func (c *Controller) activation(op string, container Element, handOff bool) func(Event) {
	return func(ev Event) {
		ev.StopPropagation()
		ev.PreventDefault()

		c.guard.run(op, func() error {
			var hrefErr error
			if handOff {
				var href string
				href, hrefErr = c.loc.Href()
				if hrefErr == nil {
					c.bridge.TriggerDownload(href)
				}
			}

			c.state.Dismiss()
			c.mounted = false
			return errors.Join(hrefErr, container.Remove())
		})
		if c.changed != nil {
			c.changed()
		}
	}
}

func (c *Controller) iconURL() (string, bool) {
	if c.icons == nil || !c.guard.live() {
		return "", false
	}
	src, err := c.icons.ResolveURL(c.cfg.IconPath)
	if err != nil {
		c.logger.Debug("overlay: icon unavailable", "path", c.cfg.IconPath, "error", err)
		return "", false
	}
	return src, true
}

// builder chains element construction and keeps the first error.
type builder struct {
	doc Document
	err error
}

func (b *builder) create(tag string) Element {
	if b.err != nil {
		return nil
	}
	el, err := b.doc.CreateElement(tag)
	if err != nil {
		b.err = err
		return nil
	}
	return el
}

func (b *builder) attr(el Element, name, value string) {
	if b.err != nil {
		return
	}
	b.err = el.SetAttribute(name, value)
}

func (b *builder) text(el Element, text string) {
	if b.err != nil {
		return
	}
	b.err = el.SetText(text)
}

func (b *builder) append(parent, child Element) {
	if b.err != nil {
		return
	}
	b.err = parent.AppendChild(child)
}
