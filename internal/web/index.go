package web

// indexHTML takes the current control label as its only verb
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Screen Balance</title>
    <script src="https://unpkg.com/htmx.org@1.9.10"></script>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        :root {
            --bg-primary: #f5f5f5;
            --bg-secondary: white;
            --text-primary: #333;
            --text-secondary: #1a1a1a;
            --text-muted: #7f8c8d;
            --border-color: #eee;
            --border-strong: #ecf0f1;
            --accent-color: #3498db;
            --heading-color: #2c3e50;
            --shadow: rgba(0,0,0,0.1);
        }

        [data-theme="dark"] {
            --bg-primary: #1a1a1a;
            --bg-secondary: #2d2d2d;
            --text-primary: #e0e0e0;
            --text-secondary: #ffffff;
            --text-muted: #a0a0a0;
            --border-color: #404040;
            --border-strong: #4a4a4a;
            --accent-color: #5dade2;
            --heading-color: #5dade2;
            --shadow: rgba(0,0,0,0.3);
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: var(--bg-primary);
            padding: 20px;
            color: var(--text-primary);
        }

        .header {
            display: flex;
            justify-content: space-between;
            align-items: center;
            margin-bottom: 30px;
        }

        h1 {
            color: var(--text-secondary);
            font-size: 2rem;
        }

        .header-controls {
            display: flex;
            gap: 10px;
        }

        .header-btn {
            background: var(--bg-secondary);
            color: var(--text-primary);
            border: 2px solid var(--border-color);
            border-radius: 50px;
            padding: 8px 16px;
            cursor: pointer;
            font-size: 1rem;
        }

        .header-btn:hover {
            border-color: var(--accent-color);
        }

        .report-box {
            max-width: 720px;
            background: var(--bg-secondary);
            border-radius: 8px;
            box-shadow: 0 2px 4px var(--shadow);
            padding: 24px;
        }

        .report-box h2 {
            font-size: 1.5rem;
            margin-bottom: 20px;
            color: var(--heading-color);
            border-bottom: 2px solid var(--accent-color);
            padding-bottom: 10px;
        }

        .screen-item {
            display: flex;
            justify-content: space-between;
            align-items: center;
            padding: 12px 8px;
            border-bottom: 1px solid var(--border-color);
            position: relative;
            border-radius: 4px;
        }

        .screen-item::before {
            content: '';
            position: absolute;
            left: 0;
            top: 0;
            height: 100%%;
            width: var(--bar-width, 0%%);
            background: var(--accent-color);
            opacity: 0.2;
            border-radius: 4px;
        }

        .screen-item > * {
            position: relative;
        }

        .screen-time {
            color: var(--text-muted);
            font-size: 0.9rem;
        }

        .screen-percentage {
            color: var(--accent-color);
            font-weight: 600;
            display: inline-block;
            min-width: 5em;
            text-align: right;
        }

        .loading {
            color: var(--text-muted);
            font-style: italic;
        }

        .total {
            margin-top: 20px;
            padding-top: 15px;
            border-top: 2px solid var(--border-strong);
            font-weight: 600;
            font-size: 1.1rem;
            color: var(--heading-color);
        }

        .glyph {
            font-family: monospace;
            margin-right: 8px;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>Screen Balance</h1>
        <div class="header-controls">
            <button class="header-btn" id="control" hx-post="/api/pause" hx-swap="innerHTML">%s</button>
            <button class="header-btn" onclick="toggleTheme()" title="Toggle theme">Theme</button>
        </div>
    </div>
    <div class="report-box">
        <h2>Usage</h2>
        <div hx-get="/api/report" hx-trigger="load, every 1s" hx-swap="innerHTML">
            <div class="loading">Loading...</div>
        </div>
    </div>
    <script>
        function setTheme(theme) {
            document.documentElement.setAttribute('data-theme', theme);
            localStorage.setItem('theme', theme);
        }

        function toggleTheme() {
            const current = document.documentElement.getAttribute('data-theme');
            setTheme(current === 'dark' ? 'light' : 'dark');
        }

        const prefersDark = window.matchMedia('(prefers-color-scheme: dark)').matches;
        setTheme(localStorage.getItem('theme') || (prefersDark ? 'dark' : 'light'));
    </script>
</body>
</html>`
