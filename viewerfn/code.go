package viewerfn

import (
	"fmt"
	"strings"
)

// Code renders the rule as CloudFront Function JavaScript (cloudfront-js-2.0).
//
// The whole handler is wrapped in try/catch returning the original request:
// a broken redirect must degrade to pass-through at the edge, never to an
// error page that blocks the alias hostname.
func (r Rule) Code() string {
	return fmt.Sprintf(`function handler(event) {
    var request = event.request;
    try {
        var host = '';
        if (request.headers['host'] && request.headers['host'].value) {
            host = request.headers['host'].value.toLowerCase();
        }
        var comma = host.indexOf(',');
        if (comma !== -1) {
            host = host.substring(0, comma);
        }
        host = host.trim();
        var port = host.lastIndexOf(':');
        if (port > 0 && /^[0-9]+$/.test(host.substring(port + 1))) {
            host = host.substring(0, port);
        }
        if (host.length > 1 && host.charAt(host.length - 1) === '.') {
            host = host.substring(0, host.length - 1);
        }
        if (host !== '%s') {
            return request;
        }
        var uri = request.uri || '/';
        if (uri.charAt(0) !== '/') {
            uri = '/' + uri;
        }
        var location = 'https://%s' + uri;
        var parts = [];
        for (var key in request.querystring) {
            var entry = request.querystring[key];
            if (entry.multiValue) {
                for (var i = 0; i < entry.multiValue.length; i++) {
                    parts.push(key + '=' + entry.multiValue[i].value);
                }
            } else if (entry.value === '') {
                parts.push(key);
            } else {
                parts.push(key + '=' + entry.value);
            }
        }
        if (parts.length > 0) {
            location = location + '?' + parts.join('&');
        }
        return {
            statusCode: 301,
            statusDescription: 'Moved Permanently',
            headers: {
                'location': { value: location },
                'cache-control': { value: 'no-store' }
            }
        };
    } catch (err) {
        return request;
    }
}
`, jsString(r.AliasHost), jsString(r.PrimaryHost))
}

// jsString escapes a value for embedding in a single-quoted JS literal.
// Hostnames never need this after Validate, but the renderer does not
// assume its inputs were validated.
func jsString(value string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		"\n", `\n`,
		"\r", `\r`,
	)
	return replacer.Replace(value)
}
