package server

import "html/template"

const contentTypeHTML = "text/html; charset=utf-8"

const pageLayout = `<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
{{if .Error}}<p style="color:red">{{.Error}}</p>{{end}}
{{template "content" .}}
</body>
</html>`

const loginContent = `{{define "content"}}
<form method="post" action="/auth/login">
  <label>Username <input name="username" value="{{.Username}}"></label>
  <label>Password <input name="password" type="password"></label>
  <button type="submit">Sign in</button>
</form>
<p><a href="/signup">Create an account</a></p>
{{end}}`

const otpContent = `{{define "content"}}
<p>Enter the 6-digit passcode that was sent to you.</p>
<form method="post" action="/auth/otp">
  <label>Passcode <input name="code" inputmode="numeric" maxlength="6" autocomplete="one-time-code"></label>
  <button type="submit">Verify</button>
</form>
<p><a href="/login">Start over</a></p>
{{end}}`

const signupContent = `{{define "content"}}
<form method="post" action="/auth/register">
  <label>Username <input name="username" value="{{.Username}}"></label>
  <label>Email <input name="email" type="email" value="{{.Email}}"></label>
  <label>First name <input name="first_name" value="{{.FirstName}}"></label>
  <label>Last name <input name="last_name" value="{{.LastName}}"></label>
  <label>Password <input name="password" type="password"></label>
  <label>Confirm password <input name="password2" type="password"></label>
  <button type="submit">Create account</button>
</form>
<p><a href="/login">Sign in instead</a></p>
{{end}}`

const dashboardContent = `{{define "content"}}
<p>Signed in as <strong>{{.FullName}}</strong> ({{.Role}})</p>
<p>{{.Email}}</p>
<p><a href="/security">Security activity</a> | <a href="/auth/logout">Sign out</a></p>
{{end}}`

const securityContent = `{{define "content"}}
<table>
<tr><th>Time</th><th>Event</th><th>User</th><th>IP</th><th>Description</th></tr>
{{range .Events}}<tr><td>{{.CreatedAt.Format "2006-01-02 15:04:05"}}</td><td>{{.EventType}}</td><td>{{.Username}}</td><td>{{.IPAddress}}</td><td>{{.Description}}</td></tr>
{{end}}</table>
<p><a href="/dashboard">Back</a></p>
{{end}}`

func parsePage(name, content string) *template.Template {
	return template.Must(template.Must(template.New(name).Parse(pageLayout)).Parse(content))
}
