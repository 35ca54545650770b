package pagehost

import "strings"

const styleElementID = "pica-overlay-style"

// styleSheet returns the overlay stylesheet scoped to the container ID.
func styleSheet(containerID string) string {
	const css = `
#ID {
  position: absolute;
  top: 12px;
  right: 12px;
  z-index: 2147483647;
  display: flex;
  align-items: center;
  gap: 6px;
  font-family: Roboto, Arial, sans-serif;
}
#ID .pica-download-btn {
  display: flex;
  align-items: center;
  gap: 6px;
  padding: 6px 12px;
  border: 0;
  border-radius: 18px;
  background: rgba(15, 15, 15, 0.8);
  color: #fff;
  font-size: 13px;
  cursor: pointer;
}
#ID .pica-download-btn img {
  width: 16px;
  height: 16px;
}
#ID .pica-close-btn {
  width: 24px;
  height: 24px;
  padding: 0;
  border: 0;
  border-radius: 50%;
  background: rgba(15, 15, 15, 0.8);
  color: #fff;
  font-size: 16px;
  line-height: 24px;
  cursor: pointer;
}
#ID button:hover {
  background: rgba(48, 48, 48, 0.9);
}
`
	return strings.ReplaceAll(css, "#ID", "#"+cssIdent(containerID))
}

// cssIdent escapes characters that would end an ID selector.
func cssIdent(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r > 0x7f:
			sb.WriteRune(r)
		default:
			sb.WriteByte('\\')
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
