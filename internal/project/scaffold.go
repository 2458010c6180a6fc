// Package project - scaffold.go generates the non-model files of a site:
// build config, entry point, global styles and the App shell. These are
// written verbatim and never pass through extraction.
package project

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/spa-builder/internal/types"
)

// Scaffold writes every config and entry file for a fresh project.
func (p *Project) Scaffold(spec *types.BuildSpec) error {
	files := map[string]string{
		"package.json":       packageJSON(spec.ProjectName),
		"vite.config.js":     viteConfig,
		"tailwind.config.js": tailwindConfig,
		"postcss.config.js":  postcssConfig,
		"index.html":         indexHTML(spec.Title),
		"src/main.jsx":       mainJSX,
		"src/index.css":      indexCSS(spec.ColorScheme),
	}
	for rel, content := range files {
		if err := p.WriteFile(rel, content); err != nil {
			return err
		}
	}
	return nil
}

func packageJSON(name string) string {
	pkg := map[string]interface{}{
		"name":    name,
		"private": true,
		"version": "0.0.0",
		"type":    "module",
		"scripts": map[string]string{
			"dev":     "vite",
			"build":   "vite build",
			"preview": "vite preview",
		},
		"dependencies": map[string]string{
			"react":         "^18.2.0",
			"react-dom":     "^18.2.0",
			"framer-motion": "^11.0.0",
			"react-icons":   "^5.0.0",
		},
		"devDependencies": map[string]string{
			"@vitejs/plugin-react": "^4.2.0",
			"autoprefixer":         "^10.4.0",
			"postcss":              "^8.4.0",
			"tailwindcss":          "^3.4.0",
			"vite":                 "^5.0.0",
		},
	}
	out, _ := json.MarshalIndent(pkg, "", "  ")
	return string(out) + "\n"
}

const viteConfig = `import { defineConfig } from 'vite'
import react from '@vitejs/plugin-react'
export default defineConfig({
  plugins: [react()],
  server: { port: 5173 },
})
`

const tailwindConfig = `export default {
  content: ['./index.html', './src/**/*.{js,ts,jsx,tsx}'],
  theme: {
    extend: {
      colors: {
        accent:  '#6366f1',
        accent2: '#22d3ee',
        dark:    '#0a0a0f',
        dark2:   '#12121a',
        card:    '#1e1e2e',
      },
      fontFamily: { sans: ['Inter', 'system-ui', 'sans-serif'] },
    },
  },
  plugins: [],
}
`

const postcssConfig = "export default { plugins: { tailwindcss: {}, autoprefixer: {} } }\n"

func indexHTML(title string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width,initial-scale=1.0" />
  <title>%s</title>
  <link rel="preconnect" href="https://fonts.googleapis.com" />
  <link href="https://fonts.googleapis.com/css2?family=Inter:wght@300;400;500;600;700;800;900&display=swap" rel="stylesheet" />
</head>
<body>
  <div id="root"></div>
  <script type="module" src="/src/main.jsx"></script>
</body>
</html>
`, title)
}

const mainJSX = `import React from 'react'
import ReactDOM from 'react-dom/client'
import App from './App.jsx'
import './index.css'

ReactDOM.createRoot(document.getElementById('root')).render(
  <React.StrictMode>
    <App />
  </React.StrictMode>
)
`

// accentsFor maps a requested color scheme to a gradient pair, defaulting
// to indigo and cyan.
func accentsFor(colorScheme string) (string, string) {
	cl := strings.ToLower(colorScheme)
	switch {
	case strings.Contains(cl, "red") || strings.Contains(cl, "mario"):
		return "#ff4444", "#ff9f43"
	case strings.Contains(cl, "green"):
		return "#10b981", "#059669"
	case strings.Contains(cl, "orange"):
		return "#f59e0b", "#ef4444"
	case strings.Contains(cl, "pink"):
		return "#ec4899", "#8b5cf6"
	case strings.Contains(cl, "gold") || strings.Contains(cl, "yellow"):
		return "#fbbf24", "#f59e0b"
	case strings.Contains(cl, "purple"):
		return "#a855f7", "#6366f1"
	}
	return "#6366f1", "#22d3ee"
}

func indexCSS(colorScheme string) string {
	acc, acc2 := accentsFor(colorScheme)
	return fmt.Sprintf(`@tailwind base;
@tailwind components;
@tailwind utilities;

@layer base {
  * { scroll-behavior: smooth; box-sizing: border-box; }
  /* Safety net: body always gets a dark bg and visible text, so a
     component that forgets its background never looks blank. */
  html, body, #root {
    min-height: 100vh;
    background-color: #0a0a0f;
    color: #e2e8f0;
  }
  body { @apply font-sans; }
  ::-webkit-scrollbar { width: 5px; }
  ::-webkit-scrollbar-track { @apply bg-dark2; }
  ::-webkit-scrollbar-thumb { background: %s; border-radius: 99px; }
}
@layer utilities {
  .gradient-text {
    background: linear-gradient(135deg, %s, %s);
    -webkit-background-clip: text;
    -webkit-text-fill-color: transparent;
    background-clip: text;
  }
  .glass {
    backdrop-filter: blur(20px);
    background: rgba(30,30,46,0.55);
    border: 1px solid rgba(255,255,255,0.08);
  }
  .glow { box-shadow: 0 0 30px %s33; border: 1px solid %s44; }
}
`, acc, acc, acc2, acc, acc)
}

// AppShell builds src/App.jsx for the sectioned strategy: Navbar plus one
// animated wrapper per section.
func AppShell(title string, sections []string) string {
	nonNavbar := withoutNavbar(sections)
	var b strings.Builder
	b.WriteString("import { motion } from 'framer-motion'\n")
	b.WriteString("import Navbar from './components/Navbar'\n")
	for _, s := range nonNavbar {
		fmt.Fprintf(&b, "import %s from './components/%s'\n", s, s)
	}
	b.WriteString("\nconst fadeUp = { hidden:{opacity:0,y:40}, visible:{opacity:1,y:0,transition:{duration:0.65}} }\n\n")
	b.WriteString("export default function App() {\n")
	b.WriteString("  return (\n")
	b.WriteString("    <div className='bg-dark min-h-screen overflow-x-hidden'>\n")
	b.WriteString("      <Navbar />\n")
	for _, s := range nonNavbar {
		fmt.Fprintf(&b, "      <motion.div id='%s' className='py-20 px-6 max-w-7xl mx-auto'\n", strings.ToLower(s))
		b.WriteString("        initial='hidden' whileInView='visible' viewport={{ once:true, amount:0.08 }} variants={fadeUp}>\n")
		fmt.Fprintf(&b, "        <%s />\n", s)
		b.WriteString("      </motion.div>\n")
	}
	b.WriteString("      <footer className='border-t border-white/10 py-6 text-center text-gray-500 text-sm'>\n")
	fmt.Fprintf(&b, "        <p>© 2024 %s</p>\n", title)
	b.WriteString("      </footer>\n")
	b.WriteString("    </div>\n")
	b.WriteString("  )\n")
	b.WriteString("}\n")
	return b.String()
}

// SingleAppShell builds src/App.jsx for the single-app strategy, where the
// model generates one App component holding the whole site.
func SingleAppShell() string {
	return `import AppComponent from './components/App'
export default function App() {
  return <div className='min-h-screen overflow-x-hidden'><AppComponent /></div>
}
`
}

// FallbackNavbar is a hand-written Navbar used when generation fails. It
// carries the full scroll and hamburger behavior so the page stays usable.
func FallbackNavbar(title string, sections []string) string {
	links := withoutNavbar(sections)
	var desktop, mobile strings.Builder
	for i, s := range links {
		if i > 0 {
			desktop.WriteString("\n          ")
			mobile.WriteString("\n")
		}
		fmt.Fprintf(&desktop,
			`<a href="#%s" onClick={smoothScroll} className="text-sm text-gray-400 hover:text-white transition-colors uppercase tracking-widest">%s</a>`,
			strings.ToLower(s), s)
		fmt.Fprintf(&mobile,
			`<a href="#%s" onClick={smoothScroll} className="text-gray-300 py-2 border-b border-white/10">%s</a>`,
			strings.ToLower(s), s)
	}
	return fmt.Sprintf(`import { useState, useEffect } from 'react'
export default function Navbar() {
  const [scrolled, setScrolled] = useState(false)
  const [open, setOpen] = useState(false)
  useEffect(() => {
    const fn = () => setScrolled(window.scrollY > 50)
    window.addEventListener('scroll', fn)
    return () => window.removeEventListener('scroll', fn)
  }, [])
  const smoothScroll = (e) => {
    e.preventDefault()
    const id = e.target.getAttribute('href')?.slice(1)
    document.getElementById(id)?.scrollIntoView({ behavior: 'smooth' })
    setOpen(false)
  }
  return (
    <nav className={`+"`"+`fixed top-0 w-full z-50 transition-all duration-300 ${scrolled ? 'backdrop-blur-xl bg-black/60 border-b border-white/10' : 'bg-transparent'}`+"`"+`}>
      <div className="max-w-7xl mx-auto px-6 py-4 flex justify-between items-center">
        <a href="#" className="text-xl font-black gradient-text">%s</a>
        <div className="hidden md:flex gap-8">
          %s
        </div>
        <button className="md:hidden text-white text-xl" onClick={() => setOpen(!open)}>☰</button>
      </div>
      {open && (
        <div className="md:hidden bg-black/90 px-6 py-4 flex flex-col gap-3">
%s
        </div>
      )}
    </nav>
  )
}
`, title, desktop.String(), mobile.String())
}

func withoutNavbar(sections []string) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		if s != "Navbar" {
			out = append(out, s)
		}
	}
	return out
}

// WriteReadme records what was built, for humans browsing the workspace.
func (p *Project) WriteReadme(spec *types.BuildSpec) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", spec.Title, spec.Description)
	fmt.Fprintf(&b, "Generated React + Vite + Tailwind site (strategy: %s).\n\n", spec.Strategy)
	if len(spec.Sections) > 0 {
		b.WriteString("Sections:\n")
		for _, s := range spec.Sections {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		b.WriteString("\n")
	}
	b.WriteString("```\nnpm install\nnpm run dev\n```\n")
	return p.WriteFile("README.md", b.String())
}
