package main

import (
	"strings"
	"testing"
)

func TestLintSource(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		want     int
		contains string
	}{
		{
			name: "marked",
			src: "package q\n\nconst QList = `--sql 93e14cfa-4fc9-4a2a-afa4-85267063b4c3\nselect 1;\n`\n",
		},
		{
			name:     "missing marker",
			src:      "package q\n\nconst QList = `select id from study_sessions`\n",
			want:     1,
			contains: "missing or invalid",
		},
		{
			name:     "ddl without marker",
			src:      "package q\n\nconst QCreate = \"create table t (id int)\"\n",
			want:     1,
			contains: "missing or invalid",
		},
		{
			name: "duplicate marker",
			src: "package q\n\nconst (\n" +
				"\tQA = `--sql 93e14cfa-4fc9-4a2a-afa4-85267063b4c3\nselect 1;`\n" +
				"\tQB = `--sql 93e14cfa-4fc9-4a2a-afa4-85267063b4c3\nselect 2;`\n)\n",
			want:     1,
			contains: "already used",
		},
		{
			name: "not sql",
			src:  "package q\n\nconst greeting = \"hola mundo\"\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := newLinter()
			if err := l.lintSource("q.go", []byte(tc.src)); err != nil {
				t.Fatalf("lintSource: %v", err)
			}
			if len(l.violations) != tc.want {
				t.Fatalf("violations = %+v, want %d", l.violations, tc.want)
			}
			if tc.contains != "" && !strings.Contains(l.violations[0].message, tc.contains) {
				t.Fatalf("message = %q, want %q", l.violations[0].message, tc.contains)
			}
		})
	}
}

func TestSQLInlinePackageIsClean(t *testing.T) {
	l := newLinter()
	if err := l.lintPath("../../sqlinline"); err != nil {
		t.Fatalf("lintPath: %v", err)
	}
	for _, v := range l.violations {
		t.Errorf("%s:%d %s (%s)", v.file, v.line, v.message, v.name)
	}
}
