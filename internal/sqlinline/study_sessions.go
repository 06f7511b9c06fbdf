package sqlinline

const QCreateStudySessionsTable = `--sql e2508649-f452-492b-9260-1afe56cb9475
create table if not exists study_sessions (
	id uuid primary key,
	user_id text not null,
	goal_name text not null,
	study_time int not null,
	topic text not null,
	mode text not null,
	created_at timestamptz not null default now()
);
`

const QCreateStudySessionsUserIndex = `--sql 9b0752f5-01e4-4072-9f92-5822d80124d2
create index if not exists study_sessions_user_created_idx
on study_sessions (user_id, created_at desc);
`

const QInsertStudySession = `--sql 08a5288d-c13a-448a-bbf8-ca4b1da80922
insert into study_sessions(id, user_id, goal_name, study_time, topic, mode, created_at)
values ($1::uuid, $2::text, $3::text, $4::int, $5::text, $6::text, now())
returning created_at;
`

const QListStudySessions = `--sql 93e14cfa-4fc9-4a2a-afa4-85267063b4c3
select id, user_id, goal_name, study_time, topic, mode, created_at
from study_sessions
where user_id = $1::text
order by created_at desc
limit $2::int;
`

const QSelectStudySession = `--sql 915710c5-734c-4cc7-8c32-685eda53a1ce
select id, user_id, goal_name, study_time, topic, mode, created_at
from study_sessions
where user_id = $1::text and id = $2::uuid;
`

const QDeleteStudySession = `--sql 81639a6a-63a3-4d19-8e69-dbb52133db3d
delete from study_sessions
where user_id = $1::text and id = $2::uuid;
`

const QLockStudySessionKey = `--sql b1a3b118-4c7c-47aa-b9ce-b3453802162c
select pg_advisory_xact_lock(hashtextextended($1::text, 0));
`

const QSelectRecentDuplicateSession = `--sql f37c3690-ce0e-4cc0-887e-9fe7a8afe604
select id, user_id, goal_name, study_time, topic, mode, created_at
from study_sessions
where user_id = $1::text and goal_name = $2::text and topic = $3::text and mode = $4::text
  and created_at > now() - make_interval(secs => $5::int)
order by created_at desc
limit 1;
`
