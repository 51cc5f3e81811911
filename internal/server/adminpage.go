package server

import (
	"bytes"
	"html/template"
	"net/http"

	"nailsxlauren/internal/services"
)

type adminPageData struct {
	Title   string
	Subject string
}

var adminPage = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} | Bookings</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; color: #3b2f33; margin: 2rem;">
    <header style="display: flex; justify-content: space-between; align-items: center;">
        <h1 style="color: #b0577a;">Bookings</h1>
        <div>Signed in as <strong>{{.Subject}}</strong> <button id="logout">Log out</button></div>
    </header>

    <form id="search">
        <input name="search" placeholder="Search name, phone, email, message">
        <select name="range">
            <option value="all">All time</option>
            <option value="1m">Last month</option>
            <option value="3m">Last 3 months</option>
            <option value="6m">Last 6 months</option>
            <option value="12m">Last 12 months</option>
        </select>
        <button type="submit">Search</button>
        <a id="csv" href="/api/admin/bookings/export?format=csv">CSV</a>
        <a id="xlsx" href="/api/admin/bookings/export?format=xlsx">Excel</a>
        <a id="pdf" href="/api/admin/bookings/export?format=pdf">PDF</a>
    </form>

    <table id="bookings" style="width: 100%; border-collapse: collapse; margin-top: 1rem;">
        <thead><tr><th>Name</th><th>Phone</th><th>Email</th><th>Date</th><th>Time</th><th>Message</th><th>Created</th><th>Price</th></tr></thead>
        <tbody></tbody>
    </table>
    <p id="paging"></p>

    <script>
    (function () {
        var form = document.getElementById('search');
        var page = 1;

        function cell(text) {
            var td = document.createElement('td');
            td.textContent = text == null ? '' : text;
            return td;
        }

        function load() {
            var params = new URLSearchParams(new FormData(form));
            params.set('page', page);
            ['csv', 'xlsx', 'pdf'].forEach(function (f) {
                var p = new URLSearchParams(params);
                p.set('format', f);
                document.getElementById(f).href = '/api/admin/bookings/export?' + p.toString();
            });
            fetch('/api/admin/bookings?' + params.toString(), {credentials: 'same-origin'})
                .then(function (r) {
                    if (r.status === 401) { window.location = '/'; return null; }
                    return r.json();
                })
                .then(function (res) {
                    if (!res) { return; }
                    var body = document.querySelector('#bookings tbody');
                    body.innerHTML = '';
                    res.data.forEach(function (b) {
                        var tr = document.createElement('tr');
                        [b.full_name, b.phone_number, b.email, b.preferred_date, b.preferred_time,
                         b.message, b.created_on, b.init_price].forEach(function (v) { tr.appendChild(cell(v)); });
                        body.appendChild(tr);
                    });
                    document.getElementById('paging').textContent =
                        'Page ' + res.page + ' of ' + res.totalPages + ' (' + res.count + ' bookings)';
                });
        }

        form.addEventListener('submit', function (e) { e.preventDefault(); page = 1; load(); });
        document.getElementById('logout').addEventListener('click', function () {
            fetch('/api/admin/logout', {method: 'POST', credentials: 'same-origin'})
                .then(function () { window.location = '/'; });
        });
        load();
    })();
    </script>
</body>
</html>
`))

func (s *Server) handleAdminPage(w http.ResponseWriter, r *http.Request) {
	data := adminPageData{Title: s.cfg.App.Name}
	if p, ok := services.PrincipalFromContext(r.Context()); ok {
		data.Subject = p.Subject
	}

	var buf bytes.Buffer
	if err := adminPage.Execute(&buf, data); err != nil {
		s.log.Error().Err(err).Msg("failed to render admin page")
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
